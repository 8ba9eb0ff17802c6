package delaunay_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDelaunay(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Delaunay Suite")
}
