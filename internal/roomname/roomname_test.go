package roomname

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestGenerate_OneWordPerList(t *testing.T) {
	req := require.New(t)

	for range 50 {
		parts := strings.Split(Generate(), "-")
		req.Len(parts, len(lists))
		for i, p := range parts {
			req.Contains(lists[i], p)
		}
	}
}

func TestGenerate_Varies(t *testing.T) {
	seen := make([]string, 0, 20)
	for range 20 {
		seen = append(seen, Generate())
	}
	require.Greater(t, len(lo.Uniq(seen)), 1)
}
