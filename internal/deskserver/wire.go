package deskserver

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Protobuf field numbers, as declared in api/proto/hotel/v1/frontdesk.proto.
const (
	countField = 1

	confirmationIDField = 1

	layoutNameField          = 1
	layoutRoomsPerFloorField = 2

	roomNumberField   = 1
	roomFloorField    = 2
	roomPositionField = 3
	roomStatusField   = 4

	snapshotLayoutField = 1
	snapshotRoomsField  = 2
	snapshotCountsField = 3
	mapKeyField         = 1
	mapValueField       = 2

	resultRoomsField     = 1
	resultTravelField    = 2
	resultSuccessField   = 3
	resultMessageField   = 4
	resultFailureField   = 5
	resultStrategyField  = 6
	resultRequestedField = 7
	resultAvailableField = 8

	quoteResultField   = 1
	quoteSnapshotField = 2

	receiptConfirmationField = 1
	receiptResultField       = 2
	receiptBookedAtField     = 3

	bookReceiptField      = 1
	bookingsReceiptsField = 1

	timestampSecondsField = 1
	timestampNanosField   = 2
)

var errWireType = errors.New("unexpected wire type")

// wireMessage is a FrontDesk message with a protobuf wire encoding.
type wireMessage interface {
	appendWire(b []byte) []byte
	consumeWire(b []byte) error
}

// fieldFunc consumes the value of one field from b and returns its length.
// A zero length leaves the field to be skipped as unknown.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func consumeFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
		}
		b = b[m:]
	}
	return nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int) (int, error) {
	v, n, err := consumeVarint(typ, b)
	*dst = int(int32(v))
	return n, err
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	v, n, err := consumeBytes(typ, b)
	*dst = string(v)
	return n, err
}

func consumeMessage(typ protowire.Type, b []byte, dst wireMessage) (int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}
	return n, dst.consumeWire(v)
}

// appendInt32 writes a proto3 int32 field, omitting zero.
func appendInt32(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(int32(v))))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, m wireMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendWire(nil))
}

func (*Empty) appendWire(b []byte) []byte { return b }

func (e *Empty) consumeWire(b []byte) error {
	*e = Empty{}
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) (int, error) { return 0, nil })
}

// Count is encoded as sint32 with explicit presence, so a missing count
// and a zero count stay distinct.
func (r *CountRequest) appendWire(b []byte) []byte {
	if r.Count == nil {
		return b
	}
	b = protowire.AppendTag(b, countField, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(int32(*r.Count))))
}

func (r *CountRequest) consumeWire(b []byte) error {
	*r = CountRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != countField {
			return 0, nil
		}
		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}
		count := int(int32(protowire.DecodeZigZag(v)))
		r.Count = &count
		return n, nil
	})
}

func (r *BookingRequest) appendWire(b []byte) []byte {
	return appendString(b, confirmationIDField, r.ConfirmationID)
}

func (r *BookingRequest) consumeWire(b []byte) error {
	*r = BookingRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != confirmationIDField {
			return 0, nil
		}
		return consumeString(typ, b, &r.ConfirmationID)
	})
}

func (l *LayoutMessage) appendWire(b []byte) []byte {
	b = appendString(b, layoutNameField, l.Name)
	if len(l.RoomsPerFloor) > 0 {
		var packed []byte
		for _, n := range l.RoomsPerFloor {
			packed = protowire.AppendVarint(packed, uint64(int64(int32(n))))
		}
		b = protowire.AppendTag(b, layoutRoomsPerFloorField, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}

func (l *LayoutMessage) consumeWire(b []byte) error {
	*l = LayoutMessage{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case layoutNameField:
			return consumeString(typ, b, &l.Name)
		case layoutRoomsPerFloorField:
			// Repeated scalars may arrive packed or one per tag.
			if typ == protowire.VarintType {
				var n int
				size, err := consumeInt32(typ, b, &n)
				l.RoomsPerFloor = append(l.RoomsPerFloor, n)
				return size, err
			}
			packed, size, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return 0, protowire.ParseError(n)
				}
				l.RoomsPerFloor = append(l.RoomsPerFloor, int(int32(v)))
				packed = packed[n:]
			}
			return size, nil
		}
		return 0, nil
	})
}

// roomWire adapts inventory.Room to the wire.
type roomWire struct{ room *inventory.Room }

func (w roomWire) appendWire(b []byte) []byte {
	b = appendInt32(b, roomNumberField, w.room.Number)
	b = appendInt32(b, roomFloorField, w.room.Floor)
	b = appendInt32(b, roomPositionField, w.room.Position)
	return appendInt32(b, roomStatusField, int(w.room.Status))
}

func (w roomWire) consumeWire(b []byte) error {
	*w.room = inventory.Room{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case roomNumberField:
			return consumeInt32(typ, b, &w.room.Number)
		case roomFloorField:
			return consumeInt32(typ, b, &w.room.Floor)
		case roomPositionField:
			return consumeInt32(typ, b, &w.room.Position)
		case roomStatusField:
			var s int
			n, err := consumeInt32(typ, b, &s)
			w.room.Status = inventory.Status(s)
			return n, err
		}
		return 0, nil
	})
}

func appendRooms(b []byte, num protowire.Number, rooms []inventory.Room) []byte {
	for i := range rooms {
		b = appendMessage(b, num, roomWire{&rooms[i]})
	}
	return b
}

func consumeRoom(typ protowire.Type, b []byte, rooms *[]inventory.Room) (int, error) {
	var room inventory.Room
	n, err := consumeMessage(typ, b, roomWire{&room})
	*rooms = append(*rooms, room)
	return n, err
}

func (r *SnapshotResponse) appendWire(b []byte) []byte {
	b = appendMessage(b, snapshotLayoutField, &r.Layout)
	b = appendRooms(b, snapshotRoomsField, r.Rooms)
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendString(entry, mapKeyField, k)
		entry = appendInt32(entry, mapValueField, r.Counts[k])
		b = protowire.AppendTag(b, snapshotCountsField, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func (r *SnapshotResponse) consumeWire(b []byte) error {
	*r = SnapshotResponse{Counts: map[string]int{}}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case snapshotLayoutField:
			return consumeMessage(typ, b, &r.Layout)
		case snapshotRoomsField:
			return consumeRoom(typ, b, &r.Rooms)
		case snapshotCountsField:
			entry, size, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var key string
			var value int
			err = consumeFields(entry, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				switch num {
				case mapKeyField:
					return consumeString(typ, b, &key)
				case mapValueField:
					return consumeInt32(typ, b, &value)
				}
				return 0, nil
			})
			r.Counts[key] = value
			return size, err
		}
		return 0, nil
	})
}

// resultWire adapts allocator.BookingResult to the wire.
type resultWire struct{ res *allocator.BookingResult }

func (w resultWire) appendWire(b []byte) []byte {
	r := w.res
	b = appendRooms(b, resultRoomsField, r.Rooms)
	b = appendInt32(b, resultTravelField, r.TotalTravelTime)
	if r.Success {
		b = protowire.AppendTag(b, resultSuccessField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	b = appendString(b, resultMessageField, r.Message)
	b = appendInt32(b, resultFailureField, int(r.Failure))
	b = appendInt32(b, resultStrategyField, int(r.Strategy))
	b = appendInt32(b, resultRequestedField, r.Requested)
	return appendInt32(b, resultAvailableField, r.Available)
}

// consumeWire decodes a result. Rooms is never nil, matching what the
// allocator returns.
func (w resultWire) consumeWire(b []byte) error {
	r := w.res
	*r = allocator.BookingResult{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case resultRoomsField:
			return consumeRoom(typ, b, &r.Rooms)
		case resultTravelField:
			return consumeInt32(typ, b, &r.TotalTravelTime)
		case resultSuccessField:
			v, n, err := consumeVarint(typ, b)
			r.Success = protowire.DecodeBool(v)
			return n, err
		case resultMessageField:
			return consumeString(typ, b, &r.Message)
		case resultFailureField:
			var f int
			n, err := consumeInt32(typ, b, &f)
			r.Failure = allocator.Failure(f)
			return n, err
		case resultStrategyField:
			var s int
			n, err := consumeInt32(typ, b, &s)
			r.Strategy = allocator.Strategy(s)
			return n, err
		case resultRequestedField:
			return consumeInt32(typ, b, &r.Requested)
		case resultAvailableField:
			return consumeInt32(typ, b, &r.Available)
		}
		return 0, nil
	})
	if r.Rooms == nil {
		r.Rooms = []inventory.Room{}
	}
	return err
}

func (r *QuoteResponse) appendWire(b []byte) []byte {
	b = appendMessage(b, quoteResultField, resultWire{&r.Result})
	if r.Snapshot != nil {
		b = appendMessage(b, quoteSnapshotField, r.Snapshot)
	}
	return b
}

func (r *QuoteResponse) consumeWire(b []byte) error {
	*r = QuoteResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case quoteResultField:
			return consumeMessage(typ, b, resultWire{&r.Result})
		case quoteSnapshotField:
			r.Snapshot = &SnapshotResponse{}
			return consumeMessage(typ, b, r.Snapshot)
		}
		return 0, nil
	})
}

// timestampWire carries a time as google.protobuf.Timestamp.
type timestampWire struct{ t *time.Time }

func (w timestampWire) appendWire(b []byte) []byte {
	ts := timestamppb.New(*w.t)
	if s := ts.GetSeconds(); s != 0 {
		b = protowire.AppendTag(b, timestampSecondsField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s))
	}
	return appendInt32(b, timestampNanosField, int(ts.GetNanos()))
}

func (w timestampWire) consumeWire(b []byte) error {
	ts := &timestamppb.Timestamp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case timestampSecondsField:
			v, n, err := consumeVarint(typ, b)
			ts.Seconds = int64(v)
			return n, err
		case timestampNanosField:
			var nanos int
			n, err := consumeInt32(typ, b, &nanos)
			ts.Nanos = int32(nanos)
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return err
	}
	if err := ts.CheckValid(); err != nil {
		return err
	}
	*w.t = ts.AsTime()
	return nil
}

// receiptWire adapts desk.Receipt to the wire.
type receiptWire struct{ receipt *desk.Receipt }

func (w receiptWire) appendWire(b []byte) []byte {
	b = appendString(b, receiptConfirmationField, w.receipt.ConfirmationID)
	b = appendMessage(b, receiptResultField, resultWire{&w.receipt.Result})
	if !w.receipt.BookedAt.IsZero() {
		b = appendMessage(b, receiptBookedAtField, timestampWire{&w.receipt.BookedAt})
	}
	return b
}

func (w receiptWire) consumeWire(b []byte) error {
	*w.receipt = desk.Receipt{Result: allocator.BookingResult{Rooms: []inventory.Room{}}}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case receiptConfirmationField:
			return consumeString(typ, b, &w.receipt.ConfirmationID)
		case receiptResultField:
			return consumeMessage(typ, b, resultWire{&w.receipt.Result})
		case receiptBookedAtField:
			return consumeMessage(typ, b, timestampWire{&w.receipt.BookedAt})
		}
		return 0, nil
	})
}

func (r *BookResponse) appendWire(b []byte) []byte {
	return appendMessage(b, bookReceiptField, receiptWire{&r.Receipt})
}

func (r *BookResponse) consumeWire(b []byte) error {
	*r = BookResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != bookReceiptField {
			return 0, nil
		}
		return consumeMessage(typ, b, receiptWire{&r.Receipt})
	})
}

func (r *BookingsResponse) appendWire(b []byte) []byte {
	for i := range r.Bookings {
		b = appendMessage(b, bookingsReceiptsField, receiptWire{&r.Bookings[i]})
	}
	return b
}

func (r *BookingsResponse) consumeWire(b []byte) error {
	*r = BookingsResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != bookingsReceiptsField {
			return 0, nil
		}
		var receipt desk.Receipt
		n, err := consumeMessage(typ, b, receiptWire{&receipt})
		r.Bookings = append(r.Bookings, receipt)
		return n, err
	})
}
