package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestNewUnexpectedTypeError(t *testing.T) {
	err := NewUnexpectedTypeError[float64]("0.01")
	test.That(t, err.Error(), test.ShouldEqual, "expected float64 but got string")

	err = NewUnexpectedTypeError[AttributeMap](3)
	test.That(t, err.Error(), test.ShouldEqual, "expected utils.AttributeMap but got int")
}
