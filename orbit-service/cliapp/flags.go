package cliapp

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// ProtectFlags ensures flag definitions can be applied to a flag set without mutating the
// shared package-level definitions. urfave/cli writes parsed values back into the flag
// structs, so every app and sub-command must own its copy.
// ProtectFlags panics if a flag type cannot be copied.
func ProtectFlags(flags []cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		fCopy, err := cloneFlag(f)
		if err != nil {
			panic(fmt.Errorf("failed to clone flag %q: %w", f.Names()[0], err))
		}
		out = append(out, fCopy)
	}
	return out
}

func cloneFlag(f cli.Flag) (cli.Flag, error) {
	switch typedFlag := f.(type) {
	case *cli.StringFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.PathFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.BoolFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.DurationFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.Uint64Flag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.IntFlag:
		cpy := *typedFlag
		return &cpy, nil
	default:
		return nil, fmt.Errorf("unsupported flag type %T", f)
	}
}
