package render

import (
	"encoding/json"
	"net/http"

	"lendcore/handler/codes"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

func write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render: encode")
	}
}

// JSON render v as the response data
func JSON(w http.ResponseWriter, v interface{}) {
	Status(w, http.StatusOK, v)
}

// Status render v as the response data with the given status
func Status(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		Error(w, err)
		return
	}

	write(w, status, dataResponse{Data: data})
}

// Error write err with its code and http status
func Error(w http.ResponseWriter, err error) {
	code := codes.Code(err)
	resp := errorResponse{
		Code: int(code),
		Msg:  code.Name(),
	}

	if ResponseErrorMessageAsHint {
		resp.Hint = err.Error()
	}

	write(w, codes.Status(err), resp)
}
