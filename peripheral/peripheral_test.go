// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("high", High.String())
	assert.Equal("low", Low.String())
	assert.Equal(Low, High.Not())
	assert.Equal(High, Low.Not())
}

func TestParseLevel(t *testing.T) {
	testData := []struct {
		value    interface{}
		expected Level
	}{
		{"high", High},
		{"ON", High},
		{" low ", Low},
		{"off", Low},
		{"true", High},
		{"0", Low},
		{1, High},
		{0, Low},
		{true, High},
		{false, Low},
	}

	for _, record := range testData {
		t.Run(fmt.Sprintf("%v", record.value), func(t *testing.T) {
			assert := assert.New(t)
			actual, err := ParseLevel(record.value)
			assert.NoError(err)
			assert.Equal(record.expected, actual)
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseLevel("sideways")
		assert.Error(t, err)
	})
}

func TestReadierFunc(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(ReadierFunc(func() error { return nil }).Ready())
	assert.Equal(errNotReady, ReadierFunc(func() error { return errNotReady }).Ready())
}
