package op_test

import (
	"github.com/zitadel/schema"

	"github.com/auric-id/auric/pkg/oidc"
)

var (
	testDecoder = func() *schema.Decoder {
		decoder := schema.NewDecoder()
		decoder.IgnoreUnknownKeys(true)
		return decoder
	}()
	testEncoder = oidc.NewEncoder()
)
