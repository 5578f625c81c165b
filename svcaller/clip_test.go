package svcaller

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipClippedLen(t *testing.T) {
	left := Clip{Side: LeftClip, LengthOfLeftPart: 7, LengthOfRightPart: 93}
	assert.Equal(t, 7, left.clippedLen())

	right := Clip{Side: RightClip, LengthOfLeftPart: 93, LengthOfRightPart: 7}
	assert.Equal(t, 7, right.clippedLen())
}

func TestByPositionThenClipLenOrdering(t *testing.T) {
	clips := []Clip{
		{ClipPosition: 100, Side: LeftClip, LengthOfLeftPart: 5},
		{ClipPosition: 50, Side: LeftClip, LengthOfLeftPart: 20},
		{ClipPosition: 100, Side: LeftClip, LengthOfLeftPart: 30},
	}
	sort.Stable(byPositionThenClipLen(clips))

	assert.Equal(t, 50, clips[0].ClipPosition)
	assert.Equal(t, 100, clips[1].ClipPosition)
	assert.Equal(t, 30, clips[1].LengthOfLeftPart)
	assert.Equal(t, 100, clips[2].ClipPosition)
	assert.Equal(t, 5, clips[2].LengthOfLeftPart)
}

func TestSideString(t *testing.T) {
	assert.Equal(t, "LEFT", LeftClip.String())
	assert.Equal(t, "RIGHT", RightClip.String())
}
