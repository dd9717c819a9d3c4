package server

import (
	"log/slog"

	"github.com/direapp/dire/pkg/game"
	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// handleRoll rolls the caller's requested dice in order and broadcasts the
// per-die breakdown. The "class" sentinel resolves to the caller's class
// die; tokens that resolve to a kind with no rollable sides are dropped
// with a log line rather than failing the whole request. A request in
// which every die was dropped produces no broadcast.
func (s *Server) handleRoll(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	rolls := make([]game.DieResult, 0, len(env.Dice))
	for _, token := range env.Dice {
		kind := token
		if kind == protocol.DieClassSentinel {
			kind = string(caller.Class)
		}

		res, err := s.roller.RollKind(kind)
		if err != nil {
			slog.Warn("dropping unrollable die", "user", caller.Username, "token", token, "err", err)
			continue
		}

		if res.Kind == string(model.ClassFool) {
			if st := caller.Fool(); st != nil {
				sym, err := game.FoolSymbol(st.Die, res.Roll)
				if err != nil {
					slog.Error("invalid fool die face", "user", caller.Username, "err", err)
				}
				res.Symbol = sym
			}
		}
		rolls = append(rolls, res)
	}

	if len(rolls) == 0 {
		return
	}

	s.metrics.RollsPerformed.Add(1)
	s.metrics.DiceRolled.Add(int64(len(rolls)))
	s.sendActionAs(caller.Username, caller.Role, protocol.Action{
		Kind:  protocol.ActionRolls,
		Rolls: rolls,
	})
}
