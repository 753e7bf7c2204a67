// Package control provides controllers for the cart-pole.
//
// Controllers implement [dynamo.Controller] and return the normalized
// action in their first channel; the environment clamps it to [-1, 1]:
//
//   - [None]: zero action
//   - [Random]: seeded uniform actions
//   - [Manual]: action set from the keyboard
//   - [PID]: PID on the wrapped pole angle
//   - [LQR]: discrete LQR balance law designed by [DesignLQR]
//   - [SwingUp]: energy pumping with an LQR catch near upright
//
// # Usage
//
//	reg := control.NewRegistry(dyn, forceMag, dt)
//	ctrl, err := reg.Get("swingup", nil)
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
