// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"github.com/ugorji/go/codec"
)

// Format indicates which wire format is desired
type Format int

const (
	Msgpack Format = iota
	JSON
)

var (
	// handles contains the canonical codec.Handle for each Format, in order
	// of Format constants
	handles = []codec.Handle{
		&codec.MsgpackHandle{
			BasicHandle: codec.BasicHandle{
				TypeInfos: codec.NewTypeInfos([]string{"msgpack"}),
			},
			WriteExt: true,
		},
		&codec.JsonHandle{
			BasicHandle: codec.BasicHandle{
				TypeInfos: codec.NewTypeInfos([]string{"json"}),
			},
		},
	}
)

// handle looks up the appropriate codec.Handle for this format constant.
// This method returns nil if the format value is invalid.
func (f Format) handle() codec.Handle {
	if f >= 0 && int(f) < len(handles) {
		return handles[f]
	}

	return nil
}

func (f Format) String() string {
	switch f {
	case Msgpack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return "invalid"
	}
}
