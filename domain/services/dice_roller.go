package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"taixiu/domain/entities"
	"taixiu/domain/interfaces"
)

// diceRoller draws die faces from the operating system's CSPRNG
type diceRoller struct{}

// NewDiceRoller creates a RandomSource backed by crypto/rand
func NewDiceRoller() interfaces.RandomSource {
	return diceRoller{}
}

// Roll returns a uniformly distributed face in [1,6]
func (diceRoller) Roll() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(entities.DieMax))
	if err != nil {
		return 0, fmt.Errorf("random generation failed: %w", err)
	}
	return int(n.Int64()) + entities.DieMin, nil
}

// RollDice draws three independent faces from the source
func RollDice(source interfaces.RandomSource) (entities.Dice, error) {
	var faces [3]int
	for i := range faces {
		face, err := source.Roll()
		if err != nil {
			return entities.Dice{}, err
		}
		faces[i] = face
	}
	return entities.NewDice(faces[0], faces[1], faces[2])
}

// RollForMode rolls the dice and, when the mode forces a side, rerolls until the outcome
// lands on it or MaxForcedRerolls is spent. Every accepted roll stays a fair draw from the
// source, only conditioned on its side.
func RollForMode(source interfaces.RandomSource, mode entities.OutcomeMode) (entities.Dice, error) {
	dice, err := RollDice(source)
	if err != nil {
		return entities.Dice{}, err
	}

	side, forced := mode.ForcedSide()
	if !forced {
		return dice, nil
	}
	for attempt := 0; dice.Outcome() != side && attempt < entities.MaxForcedRerolls; attempt++ {
		if dice, err = RollDice(source); err != nil {
			return entities.Dice{}, err
		}
	}
	return dice, nil
}
