package test_utils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestResponse struct {
	StatusCode int
	Body       []byte
}

func MakeGetRequest(t *testing.T, router *gin.Engine, url string, expectedStatus int) *TestResponse {
	return makeRequest(t, router, http.MethodGet, url, nil, expectedStatus)
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	expectedStatus int,
	responseStruct any,
) {
	response := MakeGetRequest(t, router, url, expectedStatus)

	err := json.Unmarshal(response.Body, responseStruct)
	require.NoError(t, err, "failed to unmarshal response body: %s", string(response.Body))
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	body any,
	expectedStatus int,
) *TestResponse {
	return makeRequest(t, router, http.MethodPost, url, body, expectedStatus)
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	body any,
	expectedStatus int,
	responseStruct any,
) {
	response := MakePostRequest(t, router, url, body, expectedStatus)

	err := json.Unmarshal(response.Body, responseStruct)
	require.NoError(t, err, "failed to unmarshal response body: %s", string(response.Body))
}

func makeRequest(
	t *testing.T,
	router *gin.Engine,
	method, url string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	var requestBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		requestBody = bytes.NewReader(payload)
	}

	request, err := http.NewRequest(method, url, requestBody)
	require.NoError(t, err)

	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, expectedStatus, recorder.Code, "unexpected status, body: %s", recorder.Body.String())

	return &TestResponse{
		StatusCode: recorder.Code,
		Body:       recorder.Body.Bytes(),
	}
}
