package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MaskRune(t *testing.T) {
	req := require.New(t)

	r, err := MaskRune("*")
	req.NoError(err)
	req.Equal('*', r)

	_, err = MaskRune("")
	req.Error(err)

	_, err = MaskRune("**")
	req.Error(err)
}
