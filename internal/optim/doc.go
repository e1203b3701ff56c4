// Package optim searches parameter grids. The tune command uses it to pick
// quadtree capacity and depth for a given world size.
package optim
