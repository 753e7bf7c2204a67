// Package env implements the cart-pole swing-up environment.
//
// The environment follows a four-operation lifecycle ([Env]):
//
//	e, _ := env.New(env.DefaultParams())
//	defer e.Close()
//	obs, _ := e.Reset(env.ResetOptions{Seed: env.Seed(42)})
//	for {
//	    res, err := e.Step(action)
//	    if err != nil || res.Done() {
//	        break
//	    }
//	}
//
// # State machine
//
// A new environment is unreset. Step before the first Reset is a
// precondition violation and returns [dynamo.ErrNotReset]. Reset can be
// called again at any time to start a new episode.
//
// # Termination and truncation
//
// An episode terminates when the cart leaves [-XThreshold, XThreshold] and
// truncates when the step counter reaches TimeLimit. The two flags are
// never both set; termination wins.
//
// # Rendering
//
// With RenderMode "interactive" (or "human") every Reset and Step is shown
// on the display passed with [WithDisplay]. Render can also be called
// directly with [render.Offscreen] to get pixels.
package env
