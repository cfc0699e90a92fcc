package deskserver

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// codecName is the gRPC content-subtype the FrontDesk service speaks.
const codecName = "hotelpb"

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// wireCodec carries FrontDesk messages in the protobuf wire format of
// api/proto/hotel/v1/frontdesk.proto. Generated messages, such as the
// health service's, go through proto.Marshal.
type wireCodec struct{}

func (wireCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.appendWire(nil), nil
	case proto.Message:
		b, err := proto.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding %T: %w", v, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("encoding %T: not a protobuf message", v)
	}
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		if err := m.consumeWire(data); err != nil {
			return fmt.Errorf("decoding %T: %w", v, err)
		}
		return nil
	case proto.Message:
		if err := proto.Unmarshal(data, m); err != nil {
			return fmt.Errorf("decoding %T: %w", v, err)
		}
		return nil
	default:
		return fmt.Errorf("decoding %T: not a protobuf message", v)
	}
}

func (wireCodec) Name() string { return codecName }
