package lwproc

import "github.com/lwproc/lwproc/gen"

var (
	FrameworkVersion = gen.Version{
		Name:    "lwproc",
		Release: "0.3.0",
		License: gen.LicenseMIT,
	}
)
