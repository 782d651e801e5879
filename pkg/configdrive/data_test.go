// SPDX-License-Identifier: BSD-3-Clause

package configdrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataEmpty(t *testing.T) {
	assert.True(t, Data{}.Empty())
	assert.True(t, Data{MetaData: map[string]any{"uuid": "x"}}.Empty())
	assert.False(t, Data{UserData: []byte("#cloud-config")}.Empty())
	assert.False(t, Data{NetworkData: map[string]any{"links": []any{}}}.Empty())
}

type fakeBuilder struct {
	built Data
	err   error
}

func (f *fakeBuilder) Build(data Data) ([]byte, error) {
	f.built = data
	if f.err != nil {
		return nil, f.err
	}
	return []byte("iso-bytes"), nil
}

func TestBuilderInterfaceSatisfiedByFake(t *testing.T) {
	var b Builder = &fakeBuilder{}
	out, err := b.Build(Data{UserData: []byte("hi")})
	assert.NoError(t, err)
	assert.Equal(t, []byte("iso-bytes"), out)
}
