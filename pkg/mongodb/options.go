package mongodb

import "time"

type Option func(*Mongo)

func Database(name string) Option {
	return func(m *Mongo) {
		m.database = name
	}
}

func MaxPoolSize(size int) Option {
	return func(m *Mongo) {
		m.maxPoolSize = uint64(size)
	}
}

func ConnAttempts(attempts int) Option {
	return func(m *Mongo) {
		m.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(m *Mongo) {
		m.connTimeout = timeout
	}
}

func ServerSelectionTimeout(timeout time.Duration) Option {
	return func(m *Mongo) {
		m.serverSelectionTimeout = timeout
	}
}
