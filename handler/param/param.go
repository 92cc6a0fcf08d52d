package param

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lendcore/core"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
}

// Binding decodes the query string, and the json body of requests that carry one
func Binding(r *http.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}

	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}

	return nil
}
