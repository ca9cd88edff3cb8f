package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

func MarshalJSON(w http.ResponseWriter, i any) {
	MarshalJSONWithStatus(w, i, http.StatusOK)
}

func MarshalJSONWithStatus(w http.ResponseWriter, i any, status int) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if i == nil || (status == http.StatusNoContent) {
		return
	}
	err := json.NewEncoder(w).Encode(i)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ConcatenateJSON appends the members of the second JSON object to the
// first one, without decoding either.
func ConcatenateJSON(first, second []byte) ([]byte, error) {
	if !bytes.HasSuffix(first, []byte{'}'}) {
		return nil, fmt.Errorf("jws: invalid JSON %s", first)
	}
	if !bytes.HasPrefix(second, []byte{'{'}) {
		return nil, fmt.Errorf("jws: invalid JSON %s", second)
	}
	if len(first) == 2 {
		return second, nil
	}
	if len(second) == 2 {
		return first, nil
	}
	first[len(first)-1] = ','
	first = append(first, second[1:]...)
	return first, nil
}
