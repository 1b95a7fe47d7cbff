// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"

	"emperror.dev/errors"
	"github.com/ugorji/go/codec"
	"github.com/xmidt-org/rtcore/queue"
)

const (
	// ErrInvalidFormat is returned when a Codec is used with an unknown Format
	ErrInvalidFormat = errors.Sentinel("invalid message format")
)

// Item is the payload relayed between tasks.  It always fits into a single queue slot.
type Item struct {
	// Seq is the sequence number assigned by the producer
	Seq uint32 `msgpack:"seq" json:"seq"`

	// Value is the data carried by this item
	Value uint32 `msgpack:"value" json:"value"`

	// Origin is the name of the task that produced or last forwarded this item
	Origin string `msgpack:"origin,omitempty" json:"origin,omitempty"`
}

// Codec converts Items to and from fixed-size slots
type Codec struct {
	Format Format
}

// Encode writes the item into dst, zero-filling the remainder.  If the encoded item does not
// fit, queue.ErrCapacityExceeded is returned and dst is left unmodified.
func (c Codec) Encode(item Item, dst []byte) error {
	h := c.Format.handle()
	if h == nil {
		return ErrInvalidFormat
	}

	var encoded []byte
	if err := codec.NewEncoderBytes(&encoded, h).Encode(item); err != nil {
		return err
	}

	if len(encoded) > len(dst) {
		return errors.WithDetails(
			queue.ErrCapacityExceeded,
			"encoded", len(encoded),
			"slot", len(dst),
		)
	}

	n := copy(dst, encoded)
	clear(dst[n:])
	return nil
}

// Marshal encodes the item into a new slot of the given size
func (c Codec) Marshal(item Item, size int) ([]byte, error) {
	dst := make([]byte, size)
	if err := c.Encode(item, dst); err != nil {
		return nil, err
	}

	return dst, nil
}

// Decode reads an item from a slot.  Trailing zero padding is ignored.
func (c Codec) Decode(src []byte) (item Item, err error) {
	h := c.Format.handle()
	if h == nil {
		return Item{}, ErrInvalidFormat
	}

	if c.Format == JSON {
		src = bytes.TrimRight(src, "\x00")
	}

	err = codec.NewDecoderBytes(src, h).Decode(&item)
	return
}
