package config

// MountOptions holds high-level settings for mounting.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug       bool   // fuse debug logs
	FsName      string // mount's FsName
	Name        string // mount's Name
	AllowOther  bool   // let users other than the mounting one in
	AutoUnmount bool   // unmount when the serving process dies
	Exec        bool   // allow executing files
	NoAtime     bool   // don't update access times
}

func defaultMountOptions() MountOptions {
	return MountOptions{
		FsName:      DefaultFsName,
		Name:        DefaultName,
		AllowOther:  DefaultAllowOther,
		AutoUnmount: DefaultAutoUnmount,
		Exec:        DefaultExec,
		NoAtime:     DefaultNoAtime,
	}
}
