package game

import "errors"

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrGameOver     = errors.New("game is over")
	ErrInvalidPile  = errors.New("pile size must be at least 1")
	ErrMissingAgent = errors.New("environment needs two agents")
)
