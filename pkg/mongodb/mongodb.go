package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	_defaultDatabase               = "photo-processor"
	_defaultMaxPoolSize            = 10
	_defaultConnAttempts           = 3
	_defaultConnTimeout            = time.Second
	_defaultServerSelectionTimeout = 5 * time.Second
	_defaultConnectTimeout         = 10 * time.Second
)

// Mongo is the process-wide pooled client. It is created once in app.Run,
// shared by every repository and closed on shutdown.
type Mongo struct {
	maxPoolSize            uint64
	connAttempts           int
	connTimeout            time.Duration
	serverSelectionTimeout time.Duration
	connectTimeout         time.Duration
	database               string

	Client *mongo.Client
	DB     *mongo.Database
}

func New(uri string, opts ...Option) (*Mongo, error) {
	m := &Mongo{
		maxPoolSize:            _defaultMaxPoolSize,
		connAttempts:           _defaultConnAttempts,
		connTimeout:            _defaultConnTimeout,
		serverSelectionTimeout: _defaultServerSelectionTimeout,
		connectTimeout:         _defaultConnectTimeout,
		database:               _defaultDatabase,
	}

	for _, opt := range opts {
		opt(m)
	}

	// at least one dial, otherwise Client and DB stay nil
	if m.connAttempts < 1 {
		m.connAttempts = 1
	}

	var err error
	for m.connAttempts > 0 {
		err = m.connect(uri)
		if err == nil {
			break
		}

		// wrong credentials never heal on retry
		if errors.Is(err, errs.ErrStoreAuth) {
			break
		}

		log.Printf("MongoDB is trying to connect, attempts left: %d", m.connAttempts)

		time.Sleep(m.connTimeout)

		m.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("Mongo - New: %w", err)
	}

	return m, nil
}

func (m *Mongo) connect(uri string) error {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(m.maxPoolSize).
		SetServerSelectionTimeout(m.serverSelectionTimeout).
		SetConnectTimeout(m.connectTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return fmt.Errorf("Mongo - mongo.Connect: %w", ClassifyConnect(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.serverSelectionTimeout)
	defer cancel()

	// liveness probe before handing the client out
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(context.Background())

		return fmt.Errorf("Mongo - client.Ping: %w", ClassifyConnect(err))
	}

	m.Client = client
	m.DB = client.Database(m.database)

	return nil
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}

	err := m.Client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("Mongo - Close - m.Client.Disconnect: %w", err)
	}

	return nil
}
