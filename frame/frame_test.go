// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package frame

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = "{\n\t\"provider\": {\n\t\t\"name\": \"Dota 2\",\n\t\t\"appid\": 570,\n\t\t\"version\": 47,\n\t\t\"timestamp\": 1688514013\n\t},\n\t\"player\": {\n\n\t},\n\t\"draft\": {\n\n\t},\n\t\"auth\": {\n\t\t\"token\": \"hello1234\"\n\t}\n}"

func sampleRequest(body string) string {
	return "POST / HTTP/1.1\r\n" +
		"user-agent: Valve/Steam HTTP Client 1.0 (570)\r\n" +
		"Content-Type: application/json\r\n" +
		"Host: 127.0.0.1:3000\r\n" +
		"Accept: text/html,*/*;q=0.9\r\n" +
		"accept-encoding: gzip,identity,*;q=0\r\n" +
		"accept-charset: ISO-8859-1,utf-8,*;q=0.7\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(body)) +
		"\r\n" +
		body
}

// splitInto cuts s into n roughly equal chunks.
func splitInto(s string, n int) []string {
	if n > len(s) {
		n = len(s)
	}
	chunks := make([]string, 0, n)
	size := len(s) / n
	for i := 0; i < n; i++ {
		end := (i + 1) * size
		if i == n-1 {
			end = len(s)
		}
		chunks = append(chunks, s[i*size:end])
	}
	return chunks
}

func TestFramer_Feed(t *testing.T) {
	t.Run("will return the payload", func(t *testing.T) {
		t.Run("if the whole request arrives in a single read", func(t *testing.T) {
			f := New()

			payload, done, err := f.Feed([]byte(sampleRequest(sampleBody)))
			require.NoError(t, err)
			require.True(t, done)

			assert.Equal(t, sampleBody, string(payload))
		})

		t.Run("irrespective of how many reads deliver the request", func(t *testing.T) {
			for _, n := range []int{1, 2, 3, 7, 50} {
				t.Run(fmt.Sprintf("%d reads", n), func(t *testing.T) {
					f := New()

					var payload []byte
					var done bool
					var err error
					for _, chunk := range splitInto(sampleRequest(sampleBody), n) {
						payload, done, err = f.Feed([]byte(chunk))
						require.NoError(t, err)
					}

					require.True(t, done)
					assert.Equal(t, sampleBody, string(payload))
				})
			}
		})

		t.Run("if the body is empty", func(t *testing.T) {
			f := New()

			payload, done, err := f.Feed([]byte(sampleRequest("")))
			require.NoError(t, err)
			require.True(t, done)

			assert.Len(t, payload, 0)
		})

		t.Run("with exactly Content-Length bytes when trailing bytes follow", func(t *testing.T) {
			f := New()

			payload, done, err := f.Feed([]byte(sampleRequest(sampleBody) + "POST / HTTP/1.1\r\n"))
			require.NoError(t, err)
			require.True(t, done)

			assert.Equal(t, sampleBody, string(payload))
		})

		t.Run("if the header name casing differs", func(t *testing.T) {
			f := New()

			req := "POST / HTTP/1.1\r\ncontent-length: 7\r\n\r\n{\"a\":1}"
			payload, done, err := f.Feed([]byte(req))
			require.NoError(t, err)
			require.True(t, done)

			assert.Equal(t, `{"a":1}`, string(payload))
		})
	})

	t.Run("will ask for more bytes", func(t *testing.T) {
		t.Run("if the header block is incomplete", func(t *testing.T) {
			f := New()

			payload, done, err := f.Feed([]byte("POST / HTTP/1.1\r\nContent-Len"))
			require.NoError(t, err)

			assert.False(t, done)
			assert.Nil(t, payload)
		})

		t.Run("if the body is incomplete", func(t *testing.T) {
			f := New()

			req := sampleRequest(sampleBody)
			payload, done, err := f.Feed([]byte(req[:len(req)-10]))
			require.NoError(t, err)

			assert.False(t, done)
			assert.Nil(t, payload)
			assert.Equal(t, 10, f.BytesWanted())
		})
	})

	t.Run("will fail", func(t *testing.T) {
		t.Run("if the Content-Length header is missing", func(t *testing.T) {
			f := New()

			req := "POST / HTTP/1.1\r\nHost: 127.0.0.1:3000\r\n\r\n"
			_, _, err := f.Feed([]byte(req))

			var merr MissingContentLengthError
			require.ErrorAs(t, err, &merr)
		})

		t.Run("if the Content-Length value is not a number", func(t *testing.T) {
			f := New()

			req := "POST / HTTP/1.1\r\nContent-Length: asdasd\r\n\r\n"
			_, _, err := f.Feed([]byte(req))

			var ierr InvalidContentLengthError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, "asdasd", ierr.Value)
		})

		t.Run("if the Content-Length value is negative", func(t *testing.T) {
			f := New()

			req := "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n"
			_, _, err := f.Feed([]byte(req))

			var ierr InvalidContentLengthError
			require.ErrorAs(t, err, &ierr)
		})

		t.Run("if a header line has no colon", func(t *testing.T) {
			f := New()

			req := "POST / HTTP/1.1\r\nnot a header line\r\n\r\n"
			_, _, err := f.Feed([]byte(req))

			var serr RequestSyntaxError
			require.ErrorAs(t, err, &serr)
		})

		t.Run("if the request line is malformed", func(t *testing.T) {
			f := New()

			req := "POST /\r\nContent-Length: 2\r\n\r\n{}"
			_, _, err := f.Feed([]byte(req))

			var serr RequestSyntaxError
			require.ErrorAs(t, err, &serr)
			assert.True(t, strings.HasPrefix(serr.Error(), "malformed request syntax"))
		})
	})
}
