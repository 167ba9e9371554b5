// Package hexapod drives a six-legged robot whose 18 hobby servos hang off
// PCA9685 PWM boards on an I2C bus.
//
// # Installation
//
//	go install github.com/swapsCAPS/hexapod/cmd/hexapod@latest
//
// # Usage
//
// Calibrate the pulse range of each joint and save it to hexapod.json:
//
//	hexapod setup
//
// Then walk, or try it without hardware first:
//
//	hexapod --dry-run walk --steps 4
//	hexapod walk --tui
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/hexapod: CLI with walk, reset, center, pose, joint, relax and setup commands
//   - pkg/servo: Angle to pulse mapping for one joint, the Bus interface and its errors
//   - pkg/robot: Leg identities, pose tables, calibration and configuration
//   - pkg/gait: Tripod gait sequencer
//   - pkg/pca9685: PCA9685 boards over periph.io or /dev/i2c-N, and a dry-run simulator
package hexapod
