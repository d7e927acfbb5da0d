package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns a *Store whose client talks to an in-memory
// bucket stub instead of the network. The stub implements just the calls
// the archive store issues: conditional PUT, GET, HEAD, DELETE, and
// ListObjectsV2. Conditional PUTs against an existing key fail with 412
// the way S3 does, so the write-once behavior is observable in tests.
func NewMockForTests() *Store {
	stub := &bucketStub{objects: make(map[string]stubObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: stub}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, bucket: "mock-bucket"}
}

type stubObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type bucketStub struct {
	mu      sync.Mutex
	objects map[string]stubObject
}

func (b *bucketStub) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Path style: /<bucket>/<key>.
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return b.listResponse(req.URL.Query().Get("prefix")), nil
	}

	switch req.Method {
	case http.MethodPut:
		return b.putResponse(req, key)
	case http.MethodHead:
		obj, ok := b.objects[key]
		if !ok {
			return stubResponse(http.StatusNotFound, nil, nil), nil
		}
		return stubResponse(http.StatusOK, nil, objectHeaders(obj)), nil
	case http.MethodGet:
		obj, ok := b.objects[key]
		if !ok {
			return stubResponse(http.StatusNotFound, nil, nil), nil
		}
		return stubResponse(http.StatusOK, obj.body, objectHeaders(obj)), nil
	case http.MethodDelete:
		delete(b.objects, key)
		return stubResponse(http.StatusNoContent, nil, nil), nil
	}
	return stubResponse(http.StatusNotImplemented, nil, nil), nil
}

func (b *bucketStub) putResponse(req *http.Request, key string) (*http.Response, error) {
	if _, exists := b.objects[key]; exists && req.Header.Get("If-None-Match") == "*" {
		errBody := []byte(`<?xml version="1.0"?><Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`)
		return stubResponse(http.StatusPreconditionFailed, errBody, nil), nil
	}
	body, _ := io.ReadAll(req.Body)
	if dec, ok := unwrapChunked(body); ok {
		body = dec
	}
	meta := make(map[string]string)
	for name, vals := range req.Header {
		if after, ok := strings.CutPrefix(name, "X-Amz-Meta-"); ok && len(vals) > 0 {
			meta[strings.ToLower(after)] = vals[0]
		}
	}
	b.objects[key] = stubObject{body: body, contentType: req.Header.Get("Content-Type"), metadata: meta}
	return stubResponse(http.StatusOK, nil, http.Header{"ETag": {`"stub-etag"`}}), nil
}

func (b *bucketStub) listResponse(prefix string) *http.Response {
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var xml strings.Builder
	xml.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&xml, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(b.objects[k].body))
	}
	xml.WriteString("</ListBucketResult>")
	return stubResponse(http.StatusOK, []byte(xml.String()), http.Header{"Content-Type": {"application/xml"}})
}

func objectHeaders(obj stubObject) http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(obj.body))},
		"Content-Type":   {obj.contentType},
		"ETag":           {`"stub-etag"`},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	}
	for k, v := range obj.metadata {
		h.Set("X-Amz-Meta-"+k, v)
	}
	return h
}

func stubResponse(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

// unwrapChunked undoes single-chunk aws-chunked framing:
// <hex-size>\r\n<payload>\r\n0\r\n...
func unwrapChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size {
		return nil, false
	}
	return []byte(parts[1]), true
}
