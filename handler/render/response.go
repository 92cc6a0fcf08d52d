package render

import (
	"encoding/json"
	"os"
	"strconv"
)

// ResponseErrorMessageAsHint expose the full error message as hint
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("LENDCORE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Hint string `json:"hint,omitempty"`
}
