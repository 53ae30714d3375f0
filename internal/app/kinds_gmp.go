//go:build gmp

package app

import "github.com/agbru/pseries/internal/coefficient"

func init() {
	kinds["mpq"] = kindOf[coefficient.MPQ]{cf: coefficient.MPQFromFloat}
}
