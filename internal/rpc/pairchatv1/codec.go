// Package pairchatv1 describes the pairchat.v1 gRPC services. Messages are
// plain Go structs carried by a JSON codec, so the package has no generated
// code; the descriptors below follow the shape protoc-gen-go-grpc emits.
package pairchatv1

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype every pairchat call uses
// (application/grpc+json).
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// CallOptions selects the JSON codec. Clients built by this package add it
// to every call; pass it to grpc.WithDefaultCallOptions when invoking
// methods by hand.
func CallOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.CallContentSubtype(CodecName)}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append(CallOptions(), opts...)
}
