package mongodb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	codeAuthenticationFailed = 18
	// Atlas reports bad credentials with its own code
	codeAtlasError = 8000
)

// Classify tags driver errors with errs.ErrStoreAuth, errs.ErrStoreTLS or
// errs.ErrStoreConnection when the cause is recognisable. Other errors are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, errs.ErrStoreAuth) || errors.Is(err, errs.ErrStoreTLS) || errors.Is(err, errs.ErrStoreConnection) {
		return err
	}

	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeAuthenticationFailed) || se.HasErrorCode(codeAtlasError)) {
		return fmt.Errorf("%w: %w", errs.ErrStoreAuth, err)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "authentication failed"), strings.Contains(msg, "auth error"):
		return fmt.Errorf("%w: %w", errs.ErrStoreAuth, err)
	case strings.Contains(msg, "tls"), strings.Contains(msg, "ssl"), strings.Contains(msg, "x509"):
		return fmt.Errorf("%w: %w", errs.ErrStoreTLS, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), strings.Contains(msg, "server selection"):
		return fmt.Errorf("%w: %w", errs.ErrStoreConnection, err)
	}

	return err
}

// ClassifyConnect is Classify for errors raised while establishing the
// client, where anything unrecognised still counts as a connection failure.
func ClassifyConnect(err error) error {
	err = Classify(err)
	if err == nil {
		return nil
	}

	if errors.Is(err, errs.ErrStoreAuth) || errors.Is(err, errs.ErrStoreTLS) || errors.Is(err, errs.ErrStoreConnection) {
		return err
	}

	return fmt.Errorf("%w: %w", errs.ErrStoreConnection, err)
}
