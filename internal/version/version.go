package version

import "fmt"

const (
	VERSION_MAJOR = 1
	VERSION_MINOR = 0
	VERSION_MICRO = 2
)

type Version struct {
	Major int
	Minor int
	Micro int
}

var version = &Version{
	Major: VERSION_MAJOR,
	Minor: VERSION_MINOR,
	Micro: VERSION_MICRO,
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

func GetVersion() *Version {
	return version
}
