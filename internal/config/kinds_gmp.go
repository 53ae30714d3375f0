//go:build gmp

package config

func init() {
	CoefficientKinds = append(CoefficientKinds, "mpq")
}
