package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	type address struct {
		City string `json:"city"`
	}
	type account struct {
		ID      string  `json:"account_id"`
		Address address `json:"address"`
	}

	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{name: "map", data: map[string]string{"key": "value"}, status: http.StatusOK, wantBody: `{"key":"value"}`},
		{name: "custom status", data: map[string]string{"detail": "not found"}, status: http.StatusNotFound, wantBody: `{"detail":"not found"}`},
		{name: "nil", data: nil, status: http.StatusOK, wantBody: `null`},
		{name: "empty struct", data: struct{}{}, status: http.StatusOK, wantBody: `{}`},
		{name: "slice", data: []int{1, 2, 3}, status: http.StatusOK, wantBody: `[1,2,3]`},
		{
			name:     "nested struct",
			data:     account{ID: "acc-1", Address: address{City: "Tashkent"}},
			status:   http.StatusAccepted,
			wantBody: `{"account_id":"acc-1","address":{"city":"Tashkent"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, len(tt.wantBody), n)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWriteJSON_KeepsCachePolicy(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("Cache-Control", "max-age=60")

	_, err := WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)

	require.NoError(t, err)
	assert.Equal(t, "max-age=60", w.Header().Get("Cache-Control"))
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	n, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal error"}`, w.Body.String())
}
