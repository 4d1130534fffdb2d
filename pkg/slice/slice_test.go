// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yatra/pkg/slice"
)

/*
TestMap preserves order and the nil/empty distinction.
*/
func TestMap(t *testing.T) {
	assert.Equal(t, []string{"GOA", "LEH"}, slice.Map([]string{"goa", "leh"}, strings.ToUpper))
	assert.Nil(t, slice.Map[string, string](nil, strings.ToUpper))
	assert.NotNil(t, slice.Map([]string{}, strings.ToUpper))
}
