package lifecycle

import "fmt"

// PieceStage is the production substage of a single garment.
type PieceStage string

const (
	PieceAtShop           PieceStage = "at_shop"
	PieceInTransit        PieceStage = "in_transit"
	PieceSoaking          PieceStage = "soaking"
	PieceWaitingCut       PieceStage = "waiting_cut"
	PieceCutting          PieceStage = "cutting"
	PieceSewing           PieceStage = "sewing"
	PieceFinishing        PieceStage = "finishing"
	PieceIroning          PieceStage = "ironing"
	PieceQualityCheck     PieceStage = "quality_check"
	PieceReadyForDispatch PieceStage = "ready_for_dispatch"
	PieceBrovaAtShop      PieceStage = "brova_at_shop"
	PieceFinalAtShop      PieceStage = "final_at_shop"
	PieceAlteration       PieceStage = "alteration"
	PieceRedo             PieceStage = "redo"
	PieceCollected        PieceStage = "collected"
	PieceDelivered        PieceStage = "delivered"
)

var workshopPieces = []PieceStage{
	PieceWaitingCut, PieceSoaking, PieceCutting, PieceSewing,
	PieceFinishing, PieceIroning, PieceQualityCheck, PieceReadyForDispatch,
}

// piecesByStage lists the piece stages compatible with each order stage.
// Pieces may run at their own pace while the order is in the workshop; once
// the order is back at the shop every piece must be there too.
var piecesByStage = map[ProductionStage][]PieceStage{
	StageOrderAtShop:         {PieceAtShop},
	StageSentToWorkshop:      append([]PieceStage{PieceInTransit}, workshopPieces...),
	StageOrderAtWorkshop:     workshopPieces,
	StageSoaking:             {PieceSoaking, PieceWaitingCut},
	StageBrovaAtShop:         append([]PieceStage{PieceBrovaAtShop}, workshopPieces...),
	StageFinalAtShop:         {PieceFinalAtShop},
	StageBrovaAndFinalAtShop: {PieceBrovaAtShop, PieceFinalAtShop},
	StageBrovaAlteration:     append([]PieceStage{PieceAlteration, PieceBrovaAtShop}, workshopPieces...),
	StageBrovaRedo:           append([]PieceStage{PieceRedo, PieceBrovaAtShop}, workshopPieces...),
	StageFinalAlteration:     {PieceAlteration, PieceFinalAtShop},
	StageOrderCollected:      {PieceCollected},
	StageOrderDelivered:      {PieceDelivered},
}

// settleTo is where an inconsistent piece lands when the order moves.
var settleTo = map[ProductionStage]PieceStage{
	StageOrderAtShop:         PieceAtShop,
	StageSentToWorkshop:      PieceInTransit,
	StageOrderAtWorkshop:     PieceWaitingCut,
	StageSoaking:             PieceSoaking,
	StageBrovaAtShop:         PieceBrovaAtShop,
	StageFinalAtShop:         PieceFinalAtShop,
	StageBrovaAndFinalAtShop: PieceFinalAtShop,
	StageBrovaAlteration:     PieceAlteration,
	StageBrovaRedo:           PieceRedo,
	StageFinalAlteration:     PieceAlteration,
	StageOrderCollected:      PieceCollected,
	StageOrderDelivered:      PieceDelivered,
}

// IsValid checks if the piece stage is known.
func (p PieceStage) IsValid() bool {
	switch p {
	case PieceAtShop, PieceInTransit, PieceSoaking, PieceWaitingCut, PieceCutting,
		PieceSewing, PieceFinishing, PieceIroning, PieceQualityCheck, PieceReadyForDispatch,
		PieceBrovaAtShop, PieceFinalAtShop, PieceAlteration, PieceRedo, PieceCollected, PieceDelivered:
		return true
	}
	return false
}

// ConsistentWith reports whether a piece may sit at p while its order is at stage.
func (p PieceStage) ConsistentWith(stage ProductionStage) bool {
	for _, allowed := range piecesByStage[stage] {
		if allowed == p {
			return true
		}
	}
	return false
}

// CheckPieces validates every piece stage against the order stage and
// reports the first offending index.
func CheckPieces(stage ProductionStage, pieces []PieceStage) error {
	for i, p := range pieces {
		if !p.ConsistentWith(stage) {
			return fmt.Errorf("garment[%d]: piece stage %s is inconsistent with order stage %s", i, p, stage)
		}
	}
	return nil
}

// PieceAfter returns the stage a piece takes when its order moves to stage.
// A piece already consistent with the new stage keeps its own stage.
func PieceAfter(stage ProductionStage, current PieceStage) PieceStage {
	if current.ConsistentWith(stage) {
		return current
	}
	return settleTo[stage]
}
