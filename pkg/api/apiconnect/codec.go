// Package apiconnect wires the settleup.v1 services to Connect handlers and
// clients. Messages are plain structs encoded with a JSON codec registered
// under the "json" name, so any Connect client using JSON can call them.
package apiconnect

import (
	"encoding/json"
	"strings"

	"connectrpc.com/connect"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON registers the JSON codec. Handlers and clients built by this
// package apply it already.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, clientOptions(opts)...)
}
