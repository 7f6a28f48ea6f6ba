package tournament

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "plan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()

	require.NoError(t, plan.Conquest.Validate())
	require.NoError(t, plan.Duel.Validate())
	require.NoError(t, plan.FreeForAll.Validate())

	total := 0.0
	for _, set := range plan.FreeForAll.Sets {
		total += set.Weight
	}
	require.Equal(t, 100.0, total, "Set weights should add up to the whole round")
	require.Len(t, plan.Conquest.Games, 5)
	require.Len(t, plan.Duel.Games, 5)
}

func TestLoadPlan(t *testing.T) {
	t.Run("shipped plan matches the defaults", func(t *testing.T) {
		plan, err := LoadPlan(filepath.Join("..", "plan.hcl"))

		require.NoError(t, err)
		require.Equal(t, DefaultPlan(), plan)
	})

	t.Run("empty file keeps the defaults", func(t *testing.T) {
		plan, err := LoadPlan(writePlan(t, ""))

		require.NoError(t, err)
		require.Equal(t, DefaultPlan(), plan)
	})

	t.Run("round block replaces one table", func(t *testing.T) {
		plan, err := LoadPlan(writePlan(t, `
duel {
  opponent  = "./bots/other"
  max_turns = 300

  game {
    height = 20
    width  = 25
    seed   = 7
    points = 0.1
  }
}
`))

		require.NoError(t, err)
		require.Equal(t, DuelRound{
			Opponent: "./bots/other",
			MaxTurns: 300,
			Games:    []DuelGame{{Height: 20, Width: 25, Seed: 7, Points: 0.1}},
		}, plan.Duel)
		require.Equal(t, DefaultPlan().Conquest, plan.Conquest)
		require.Equal(t, DefaultPlan().FreeForAll, plan.FreeForAll)
	})

	t.Run("conquest expectations", func(t *testing.T) {
		plan, err := LoadPlan(writePlan(t, `
conquest {
  max_score = 0.1

  game {
    height          = 10
    width           = 10
    seed            = 1
    soft_limit      = 50
    hard_limit      = 60
    expect_conquest = true
  }
}
`))

		require.NoError(t, err)
		require.Equal(t, []ConquestGame{
			{Height: 10, Width: 10, Seed: 1, SoftLimit: 50, HardLimit: 60, ExpectConquest: true},
		}, plan.Conquest.Games)
	})

	t.Run("rejecting invalid plans", func(t *testing.T) {
		for name, content := range map[string]string{
			"board": `
free_for_all {
  matches_per_set = 10
  best_considered = 8
  max_total_score = 0.8
  set {
    weight    = 100
    boards    = [[30, 30, 30]]
    opponents = ["./bots/a"]
  }
}
`,
			"limits": `
conquest {
  max_score = 0.1
  game {
    height     = 10
    width      = 10
    seed       = 1
    soft_limit = 60
    hard_limit = 60
  }
}
`,
			"games": `
duel {
  opponent = "./bots/a"
}
`,
			"zero width": `
conquest {
  max_score = 0.1
  game {
    height     = 10
    width      = 10
    seed       = 1
    soft_limit = 50
    hard_limit = 60
  }
  game {
    height     = 10
    width      = 0
    seed       = 1
    soft_limit = 50
    hard_limit = 60
  }
}
`,
			"zero max score": `
conquest {
  max_score = 0
  game {
    height     = 10
    width      = 10
    seed       = 1
    soft_limit = 50
    hard_limit = 60
  }
}
`,
			"negative board": `
duel {
  opponent = "./bots/a"
  game {
    height = -5
    width  = 20
    seed   = 1
    points = 0.1
  }
}
`,
			"negative weight": `
free_for_all {
  matches_per_set = 10
  best_considered = 8
  max_total_score = 0.8
  set {
    weight    = -10
    boards    = [[30, 30]]
    opponents = ["./bots/a"]
  }
}
`,
			"empty set board": `
free_for_all {
  matches_per_set = 10
  best_considered = 8
  max_total_score = 0.8
  set {
    weight    = 100
    boards    = [[30, 0]]
    opponents = ["./bots/a"]
  }
}
`,
		} {
			_, err := LoadPlan(writePlan(t, content))
			require.ErrorIs(t, err, ErrInvalidPlan, name)
		}
	})

	t.Run("reporting syntax errors", func(t *testing.T) {
		_, err := LoadPlan(writePlan(t, "conquest {"))
		require.Error(t, err)

		_, err = LoadPlan(writePlan(t, `duel { unknown = 1 }`))
		require.Error(t, err)

		_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.hcl"))
		require.Error(t, err)
	})
}
