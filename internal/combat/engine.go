package combat

import (
	"go.uber.org/zap"

	"github.com/napolitain/fleetsim/internal/models"
)

// MaxRounds is the round limit after which a battle ends in a draw
const MaxRounds = 6

// Outcome is always expressed from the attacker's point of view
type Outcome int

const (
	Draw Outcome = iota
	AttackerWins
	DefenderWins
)

func (o Outcome) String() string {
	switch o {
	case AttackerWins:
		return "attacker wins"
	case DefenderWins:
		return "defender wins"
	default:
		return "draw"
	}
}

// RoundSummary is the state of both sides at the end of a round
type RoundSummary struct {
	Round         int
	Attacker      models.Fleet
	Defender      models.Fleet
	AttackerShots uint64
	DefenderShots uint64
}

// BattleResult is the outcome of a single trial
type BattleResult struct {
	Attacker models.Fleet
	Defender models.Fleet
	Rounds   int
	Outcome  Outcome
	History  []RoundSummary // only filled when the engine records history
}

// Engine runs battles. It holds no per-battle state and can be shared
// between goroutines as long as each battle gets its own Rand.
type Engine struct {
	data          *Data
	logger        *zap.Logger
	recordHistory bool
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-round debug output
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistory makes Simulate keep a summary of every round
func WithHistory() EngineOption {
	return func(e *Engine) {
		e.recordHistory = true
	}
}

// NewEngine creates an engine over the given combat data
func NewEngine(data *Data, opts ...EngineOption) *Engine {
	e := &Engine{
		data:   data,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Data returns the combat data service the engine reads from
func (e *Engine) Data() *Data {
	return e.data
}

// Simulate fights one battle of at most MaxRounds rounds
func (e *Engine) Simulate(attacker, defender models.Player, r Rand) BattleResult {
	att := NewPool(attacker.Fleet, attacker.Tech, e.data)
	def := NewPool(defender.Fleet, defender.Tech, e.data)

	var result BattleResult
	for result.Rounds < MaxRounds && att.AliveCount() > 0 && def.AliveCount() > 0 {
		attShots, defShots := e.Round(att, def, r)
		result.Rounds++

		if e.recordHistory {
			result.History = append(result.History, RoundSummary{
				Round:         result.Rounds,
				Attacker:      att.ToFleet(),
				Defender:      def.ToFleet(),
				AttackerShots: attShots,
				DefenderShots: defShots,
			})
		}

		if ce := e.logger.Check(zap.DebugLevel, "round finished"); ce != nil {
			ce.Write(
				zap.Int("round", result.Rounds),
				zap.Int("attackers_alive", att.AliveCount()),
				zap.Int("defenders_alive", def.AliveCount()),
				zap.Uint64("attacker_shots", attShots),
				zap.Uint64("defender_shots", defShots),
			)
		}

		if att.AliveCount() == 0 || def.AliveCount() == 0 {
			break
		}
		att.ResetShields()
		def.ResetShields()
	}

	result.Attacker = att.ToFleet()
	result.Defender = def.ToFleet()
	switch {
	case att.AliveCount() > 0 && def.AliveCount() == 0:
		result.Outcome = AttackerWins
	case att.AliveCount() == 0 && def.AliveCount() > 0:
		result.Outcome = DefenderWins
	default:
		result.Outcome = Draw
	}
	return result
}

// Round runs both firing phases of one round. Shooter counts are taken
// before anyone fires, so units destroyed by the attacker still shoot back
// in the defender phase. Shields are not reset here.
func (e *Engine) Round(att, def *Pool, r Rand) (attackerShots, defenderShots uint64) {
	attSnapshot := att.AliveByKind()
	defSnapshot := def.AliveByKind()

	attackerShots = e.fire(attSnapshot, att, def, r)
	defenderShots = e.fire(defSnapshot, def, att, r)
	return attackerShots, defenderShots
}

// fire makes every shooter in the snapshot shoot at targets in kind index
// order and returns the number of shots fired.
func (e *Engine) fire(shooters [models.UnitKindCount]uint64, from, targets *Pool, r Rand) uint64 {
	var shots uint64
	for i, count := range shooters {
		if count == 0 {
			continue
		}
		kind := models.UnitKind(i)
		damage := from.Attack(kind)

		for n := uint64(0); n < count; n++ {
			for {
				target, ok := targets.PickRandomAlive(r)
				if !ok {
					return shots
				}
				ApplyShot(targets, target, damage, r)
				shots++

				if !e.fireAgain(kind, targets.Kind(target), r) {
					break
				}
			}
		}
	}
	return shots
}

// fireAgain draws the rapid fire continuation: with factor R the shooter
// keeps firing with probability (R-1)/R, i.e. R shots on average.
func (e *Engine) fireAgain(shooter, struck models.UnitKind, r Rand) bool {
	rf := e.data.RapidFire(shooter, struck)
	if rf <= 1 {
		return false
	}
	return r.Float64() < float64(rf-1)/float64(rf)
}
