package benchmarks

import (
	"bufio"
	"errors"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeu5/graphenv/tsp"
)

const testConfig = `
episodes: 6
horizon: 12
workers: 2
seed: 4
hallway:
  size: 3
  max_steps: 8
tsp:
  nodes: 5
  nfp: true
recorder:
  traces: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := path.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Episodes)
	require.Equal(t, 12, cfg.Horizon)
	require.Equal(t, uint64(4), cfg.Seed)
	require.Equal(t, 3, cfg.Hallway.Size)
	require.True(t, cfg.TSP.NFP)

	values := cfg.flagValues()
	require.Equal(t, "8", values["max-steps"])
	require.Equal(t, "true", values["record-traces"])
	require.NotContains(t, values, "runs")

	_, err = LoadConfig(path.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "episodes: [1"))
	require.Error(t, err)
}

func TestHallwayCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	records := path.Join(dir, "episodes.jsonl")
	cmd := GetRootCommand()
	cmd.SetArgs([]string{
		"--config", writeConfig(t, testConfig),
		"--save", path.Join(dir, "results"),
		"--log-level", "warn",
		"hallway",
		"--episodes", "4",
		"--record-file", records,
	})
	require.NoError(t, cmd.Execute())

	require.Equal(t, 4, episodes, "Flags given on the command line win")
	require.Equal(t, 12, horizon)

	f, err := os.Open(records)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	require.NoError(t, scanner.Err())
	// 6 experiments of 4 episodes and the parallel run of 4 episodes
	require.Equal(t, 28, lines)

	for _, file := range []string{"0_rewards.png", "0_coverage.png", "hallway_qtable.json"} {
		_, err := os.Stat(path.Join(dir, "results", file))
		require.NoError(t, err)
	}
}

func TestTSPCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := GetRootCommand()
	cmd.SetArgs([]string{
		"--save", dir,
		"--episodes", "3",
		"--horizon", "20",
		"--log-level", "error",
		"tsp",
		"--nodes", "4",
		"--nfp",
		"--neighbors", "2",
	})
	require.NoError(t, cmd.Execute())
	_, err := os.Stat(path.Join(dir, "tsp_qtable.json"))
	require.NoError(t, err)
}

func TestTSPCommandNegativeNodes(t *testing.T) {
	cmd := GetRootCommand()
	cmd.SetArgs([]string{"--save", t.TempDir(), "--log-level", "error", "tsp", "--nodes=-1"})
	err := cmd.Execute()
	require.True(t, errors.Is(err, tsp.ErrInvalidGraph))
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := GetRootCommand()
	cmd.SetArgs([]string{"--log-level", "loud", "hallway", "--episodes", "1"})
	require.Error(t, cmd.Execute())
}

func TestProfilingFlags(t *testing.T) {
	dir := t.TempDir()
	cmd := GetRootCommand()
	cmd.SetArgs([]string{
		"--save", dir,
		"--episodes", "2",
		"--log-level", "error",
		"--cpuprofile", "cpu.prof",
		"--memprofile", "mem.prof",
		"hallway",
		"--size", "2",
	})
	require.NoError(t, cmd.Execute())
	for _, file := range []string{"cpu.prof", "mem.prof"} {
		info, err := os.Stat(path.Join(dir, file))
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
}
