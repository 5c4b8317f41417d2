package mocks

import (
	"github.com/brettbedarf/riddlefs"
	"github.com/stretchr/testify/mock"
)

// MockNode implements riddlefs.Node for testing across packages
type MockNode struct {
	mock.Mock
}

func (m *MockNode) Name() string {
	return m.Called().String(0)
}

func (m *MockNode) Attr() riddlefs.Attr {
	return m.Called().Get(0).(riddlefs.Attr)
}

func (m *MockNode) SetAttr(req riddlefs.SetAttrRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockNode) Rename(newName string, inSandbox bool) error {
	return m.Called(newName, inSandbox).Error(0)
}

func (m *MockNode) Delete() error {
	return m.Called().Error(0)
}

// MockRegularFile implements riddlefs.RegularFile
type MockRegularFile struct {
	MockNode
}

func (m *MockRegularFile) Read(offset int64, size int) ([]byte, error) {
	args := m.Called(offset, size)

	// Handle function return types (for computed payloads)
	if fn, ok := args.Get(0).(func(int64, int) []byte); ok {
		return fn(offset, size), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRegularFile) Write(offset int64, data []byte) (int, error) {
	args := m.Called(offset, data)
	return args.Int(0), args.Error(1)
}

// MockDirectory implements riddlefs.Directory
type MockDirectory struct {
	MockNode
}

func (m *MockDirectory) IsSandbox() bool {
	return m.Called().Bool(0)
}

func (m *MockDirectory) AddChild(ino uint64) error {
	return m.Called(ino).Error(0)
}

func (m *MockDirectory) InsertChild(index int, ino uint64) error {
	return m.Called(index, ino).Error(0)
}

func (m *MockDirectory) RemoveChild(ino uint64) error {
	return m.Called(ino).Error(0)
}

func (m *MockDirectory) Child(index int) (uint64, bool) {
	args := m.Called(index)
	return args.Get(0).(uint64), args.Bool(1)
}

func (m *MockDirectory) LookupChild(name string, names riddlefs.Namer) (uint64, error) {
	args := m.Called(name, names)
	return args.Get(0).(uint64), args.Error(1)
}
