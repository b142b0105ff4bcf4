package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/graphenv/hallway"
	"github.com/zeu5/graphenv/types"
)

func runHallway(t *testing.T, recorder types.Recorder, episodes int) {
	t.Helper()
	env, err := types.NewGraphEnv(hallway.NewHallway(3, 10))
	require.NoError(t, err)
	exp := types.NewExperiment("hallway", types.NewSeededRandomPolicy(3), env)
	require.NoError(t, exp.Run(&types.RunConfig{
		Episodes:     episodes,
		Horizon:      10,
		Recorder:     recorder,
		RecordTraces: true,
	}))
}

func TestFileRecorder(t *testing.T) {
	file := path.Join(t.TempDir(), "episodes.jsonl")
	recorder := NewFileRecorder(file)
	runHallway(t, recorder, 3)

	f, err := os.Open(recorder.Path())
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	episode := 0
	for scanner.Scan() {
		var s types.EpisodeSummary
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		require.Equal(t, "hallway", s.Experiment)
		require.Equal(t, episode, s.Episode)
		require.Len(t, s.Trace, s.Steps)
		episode++
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, 3, episode)
}

func TestRedisRecorder(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	recorder := NewRedisRecorderFromClient(client, WithPrefix("test:"))
	defer recorder.Close()

	runHallway(t, recorder, 4)
	require.True(t, mr.Exists("test:hallway:episodes"))

	ctx := context.Background()
	summaries, err := recorder.Summaries(ctx, "hallway")
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	for i, s := range summaries {
		require.Equal(t, i, s.Episode)
		require.Equal(t, s.Steps, len(s.Trace))
	}

	empty, err := recorder.Summaries(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, recorder.Clear(ctx, "hallway"))
	require.False(t, mr.Exists("test:hallway:episodes"))
}

func TestRedisRecorderUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	recorder := NewRedisRecorder(mr.Addr(), "", 0)
	defer recorder.Close()
	mr.Close()

	err = recorder.Record(context.Background(), &types.EpisodeSummary{Experiment: "x"})
	require.Error(t, err)
}
