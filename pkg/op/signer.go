package op

import (
	"context"
	"errors"

	jose "github.com/go-jose/go-jose/v3"
)

// SignerFromKey creates a jose.Signer for the given signing key.
func SignerFromKey(key SigningKey) (jose.Signer, error) {
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: key.SignatureAlgorithm(),
		Key: &jose.JSONWebKey{
			Key:   key.Key(),
			KeyID: key.ID(),
		},
	}, &jose.SignerOptions{})
	if err != nil {
		return nil, errors.New("unable to create signer")
	}
	return signer, nil
}

// signingKeyAndSigner loads the active key from storage and builds
// the signer used for all JWT creation of a request.
func signingKeyAndSigner(ctx context.Context, storage KeyStorage) (SigningKey, jose.Signer, error) {
	key, err := storage.SigningKey(ctx)
	if err != nil {
		return nil, nil, err
	}
	signer, err := SignerFromKey(key)
	if err != nil {
		return nil, nil, err
	}
	return key, signer, nil
}
