package lifecycle

// ProductionStage tracks a work order through the shop and the workshop.
type ProductionStage string

const (
	StageOrderAtShop         ProductionStage = "order_at_shop"
	StageSentToWorkshop      ProductionStage = "sent_to_workshop"
	StageOrderAtWorkshop     ProductionStage = "order_at_workshop"
	StageSoaking             ProductionStage = "soaking"
	StageBrovaAtShop         ProductionStage = "brova_at_shop"
	StageFinalAtShop         ProductionStage = "final_at_shop"
	StageBrovaAndFinalAtShop ProductionStage = "brova_and_final_at_shop"
	StageBrovaAlteration     ProductionStage = "brova_alteration"
	StageBrovaRedo           ProductionStage = "brova_redo"
	StageFinalAlteration     ProductionStage = "final_alteration"
	StageOrderCollected      ProductionStage = "order_collected"
	StageOrderDelivered      ProductionStage = "order_delivered"
)

// stageTransitions defines valid production transitions.
// Key is the current stage, value is the set of stages it can move to.
// An approved brova goes back to the workshop so the finals can be cut.
var stageTransitions = map[ProductionStage][]ProductionStage{
	StageOrderAtShop:         {StageSentToWorkshop},
	StageSentToWorkshop:      {StageOrderAtWorkshop},
	StageOrderAtWorkshop:     {StageSoaking, StageBrovaAtShop, StageFinalAtShop, StageBrovaAndFinalAtShop},
	StageSoaking:             {StageOrderAtWorkshop},
	StageBrovaAtShop:         {StageSentToWorkshop, StageBrovaAlteration, StageBrovaRedo},
	StageBrovaAlteration:     {StageSentToWorkshop},
	StageBrovaRedo:           {StageSentToWorkshop},
	StageFinalAtShop:         {StageFinalAlteration, StageOrderCollected, StageOrderDelivered},
	StageBrovaAndFinalAtShop: {StageBrovaAlteration, StageFinalAlteration, StageOrderCollected, StageOrderDelivered},
	StageFinalAlteration:     {StageSentToWorkshop},
}

// IsValid checks if the stage is known.
func (s ProductionStage) IsValid() bool {
	if _, ok := stageTransitions[s]; ok {
		return true
	}
	return s.IsTerminal()
}

// IsTerminal reports whether the order has left the shop.
func (s ProductionStage) IsTerminal() bool {
	return s == StageOrderCollected || s == StageOrderDelivered
}

// CanTransitionTo checks if a production transition is valid.
func (s ProductionStage) CanTransitionTo(next ProductionStage) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next lists the stages reachable from s.
func (s ProductionStage) Next() []ProductionStage {
	out := make([]ProductionStage, len(stageTransitions[s]))
	copy(out, stageTransitions[s])
	return out
}

// Advance validates s → next.
func Advance(s, next ProductionStage) error {
	if !next.IsValid() || !s.CanTransitionTo(next) {
		return &TransitionError{From: string(s), To: string(next)}
	}
	return nil
}

// Action is an operator action that moves a work order.
type Action string

const (
	ActionDispatch           Action = "dispatch"
	ActionReceive            Action = "receive"
	ActionSoak               Action = "soak"
	ActionBrovaReady         Action = "brova_ready"
	ActionFinalReady         Action = "final_ready"
	ActionBrovaAndFinalReady Action = "brova_and_final_ready"
	ActionApproveBrova       Action = "approve_brova"
	ActionAlter              Action = "alter"
	ActionRedo               Action = "redo"
	ActionCollect            Action = "collect"
	ActionDeliver            Action = "deliver"
)

// Target resolves the stage an action leads to from the current stage. The
// second result is false when the action does not apply.
func (a Action) Target(from ProductionStage) (ProductionStage, bool) {
	var to ProductionStage
	switch a {
	case ActionDispatch, ActionApproveBrova:
		to = StageSentToWorkshop
	case ActionReceive:
		to = StageOrderAtWorkshop
	case ActionSoak:
		to = StageSoaking
	case ActionBrovaReady:
		to = StageBrovaAtShop
	case ActionFinalReady:
		to = StageFinalAtShop
	case ActionBrovaAndFinalReady:
		to = StageBrovaAndFinalAtShop
	case ActionAlter:
		if from == StageBrovaAtShop {
			to = StageBrovaAlteration
		} else {
			to = StageFinalAlteration
		}
	case ActionRedo:
		to = StageBrovaRedo
	case ActionCollect:
		to = StageOrderCollected
	case ActionDeliver:
		to = StageOrderDelivered
	default:
		return "", false
	}
	if a == ActionApproveBrova && from != StageBrovaAtShop {
		return "", false
	}
	return to, from.CanTransitionTo(to)
}
