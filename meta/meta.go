// meta/meta.go
package meta

import "time"

// ENGINE is the default path of the game engine executable.
const ENGINE = "./halite"

// REPLAY_EXT is the extension of the replay files written by the engine.
const REPLAY_EXT = ".hlt"

// ARCHIVE_DIR is where replays are moved after scoring.
const ARCHIVE_DIR = "replays"

// SEED_RANGE bounds the random seeds drawn for free-for-all matches.
const SEED_RANGE = 1_000_000_000

// MATCHES_PER_SET defines the number of free-for-all matches per set.
const MATCHES_PER_SET = 10

// BEST_CONSIDERED defines how many of the best set scores are averaged.
const BEST_CONSIDERED = 8

// SURVIVAL_FLOOR is the frame count below which a lost match scores nothing.
const SURVIVAL_FLOOR = 100

// SURVIVAL_CEILING is the frame count at which a lost match scores in full.
const SURVIVAL_CEILING = 200

// MATCH_TIMEOUT is the default wall-clock budget of one engine run.
const MATCH_TIMEOUT = 5 * time.Minute
