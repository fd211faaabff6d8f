package dto

import "github.com/google/uuid"

type CreateSwapRequest struct {
	ItemID uuid.UUID `json:"item_id"`
	// OfferedItemID present means a trade offer; absent means a
	// points redemption.
	OfferedItemID *uuid.UUID `json:"offered_item_id"`
}
