package repository

import (
	"os"
	"testing"

	"taixiu/config"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	os.Exit(m.Run())
}
