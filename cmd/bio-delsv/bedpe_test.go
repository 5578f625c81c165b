package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/delsv/svcaller"
)

func TestWriteBEDPE(t *testing.T) {
	dels := []svcaller.Deletion{
		{ReferenceName: "chr1", LeftBp: 99999, RightBp: 100200, Length: 200, MergedFrom: 1},
		{ReferenceName: "chr2", LeftBp: 5000, RightBp: 5300, Length: 300, MergedFrom: 3},
	}

	var buf bytes.Buffer
	assert.NoError(t, writeBEDPE(&buf, dels))

	want := "chr1\t99998\t99999\tchr1\t100200\t100201\tDEL\t200\t+\t+\n" +
		"chr2\t4999\t5000\tchr2\t5300\t5301\tDEL\t300\t+\t+\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteBEDPEEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, writeBEDPE(&buf, nil))
	assert.Empty(t, buf.String())
}
