package mocks

import (
	"github.com/brettbedarf/riddlefs"
	"github.com/stretchr/testify/mock"
)

// MockMutator implements riddlefs.Mutator and records scheduled mutations
type MockMutator struct {
	mock.Mock
}

func (m *MockMutator) Insert(dirPath string, node riddlefs.Node) {
	m.Called(dirPath, node)
}

func (m *MockMutator) Remove(path string) {
	m.Called(path)
}
