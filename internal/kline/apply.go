package kline

import (
	"time"

	"github.com/anodyne74/obdcore/internal/elm"
)

// ApplyProfile runs profile's init and options AT sequence against d,
// pausing inter_command_delay between each command.
func ApplyProfile(d *elm.Driver, profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	for _, cmd := range profile.InitAT {
		if _, err := SendATLines(d, cmd, time.Second); err != nil {
			return NewApplyError("init command failed", Context{ProfileName: profile.Name, Command: cmd}, err)
		}
		sleep(profile.InterCommandDelay)
	}
	for _, cmd := range profile.OptionsAT {
		if _, err := SendATLines(d, cmd, time.Second); err != nil {
			return NewApplyError("option command failed", Context{ProfileName: profile.Name, Command: cmd}, err)
		}
		sleep(profile.InterCommandDelay)
	}
	return nil
}
