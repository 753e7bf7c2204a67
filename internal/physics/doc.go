// Package physics provides the cart-pole swing-up model.
//
// [CartPole] implements [dynamo.System] with the closed-form equations of
// motion of a pole hinged on a cart with viscous friction on the cart:
//
//	x_acc     = (-2·mpl·ω²·s + 3·mp·g·s·c + 4F - 4b·ẋ) / (4M - 3mp·c²)
//	theta_acc = (-3·mpl·ω²·s·c + 6M·g·s + 6(F - b·ẋ)·c) / (4lM - 3mpl·c²)
//
// where M is the total mass and mpl the pole mass-length product. Both are
// computed once at construction.
//
// The model also implements [dynamo.Hamiltonian] so energy can be tracked
// by metrics and by energy-shaping controllers:
//
//	dyn := physics.NewCartPole(9.82, 0.5, 0.5, 0.6, 0.1)
//	energy := dyn.Energy(state)
package physics
