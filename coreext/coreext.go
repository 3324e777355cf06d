// Package coreext imports every core extension for its side effects.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/itcl/coreext/decl"
	_ "github.com/zephyrtronium/itcl/coreext/hull"
	_ "github.com/zephyrtronium/itcl/coreext/optiondb"
	_ "github.com/zephyrtronium/itcl/coreext/script"
)
