package riddlefs

// SetAttrRequest carries an attribute update. Nil fields are left unchanged.
type SetAttrRequest struct {
	Mode  *uint32 // Only the permission bits are applied
	Uid   *uint32
	Gid   *uint32
	Size  *uint64
	Flags *uint32
}

// IsEmpty reports whether no field is set
func (r SetAttrRequest) IsEmpty() bool {
	return r.Mode == nil && r.Uid == nil && r.Gid == nil && r.Size == nil && r.Flags == nil
}

// Owner identifies the user and group of the process issuing a request
type Owner struct {
	Uid uint32
	Gid uint32
}
