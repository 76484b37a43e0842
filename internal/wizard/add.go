package wizard

import (
	"context"
	"fmt"
	"strings"

	"catalog-bot/internal/models"
)

// addText drives the Add-Product script:
// catalog -> name -> description -> photo -> variant type -> price ->
// variant photo -> add-another loop or final commit.
func (e *Engine) addText(ctx context.Context, sess *Session, text string) error {
	switch sess.Step {
	case StepAddCatalog:
		n, ok := e.parseCatalog(text)
		if !ok {
			return e.rejectCatalog(ctx, sess.Identity)
		}
		sess.Catalog = n
		sess.Step = StepAddName
		return e.sender.Send(ctx, sess.Identity, msgPromptName)

	case StepAddName:
		sess.Draft.Name = text
		sess.Step = StepAddDescription
		return e.sender.Send(ctx, sess.Identity, msgPromptDescription)

	case StepAddDescription:
		sess.Draft.Description = text
		sess.Step = StepAddPhoto
		return e.sender.Send(ctx, sess.Identity, msgPromptPhoto)

	case StepAddPhoto:
		// Only the literal "none" skips the photo; anything else
		// re-prompts rather than being read as an implicit skip.
		if !isNone(text) {
			return e.rejectInput(ctx, sess.Identity, msgBadPhotoStep)
		}
		sess.Draft.Image = ""
		sess.Step = StepAddVariantType
		return e.sender.Send(ctx, sess.Identity, msgPromptVarType)

	case StepAddVariantType:
		sess.Draft.VarType = text
		sess.Step = StepAddVariantPrice
		return e.sender.Send(ctx, sess.Identity, msgPromptVarPrice)

	case StepAddVariantPrice:
		price, ok := parsePrice(text)
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgBadPrice)
		}
		sess.Draft.VarPrice = price
		sess.Step = StepAddVariantPhoto
		return e.sender.Send(ctx, sess.Identity, msgPromptVarPhoto)

	case StepAddVariantPhoto:
		if !isNone(text) {
			return e.rejectInput(ctx, sess.Identity, msgBadPhotoStep)
		}
		return e.finishAddVariant(ctx, sess, "")

	case StepAddMore:
		switch {
		case isYes(text):
			sess.Draft.VarType = ""
			sess.Draft.VarPrice = 0
			sess.Step = StepAddVariantType
			return e.sender.Send(ctx, sess.Identity, msgPromptVarType)
		case isNo(text):
			return e.commitAddProduct(ctx, sess)
		default:
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
	}
	return nil
}

// finishAddVariant appends the pending variant to the draft and asks
// whether to loop back for another one
func (e *Engine) finishAddVariant(ctx context.Context, sess *Session, imageRef string) error {
	sess.Draft.Variants = append(sess.Draft.Variants, models.Variant{
		Type:  sess.Draft.VarType,
		Price: sess.Draft.VarPrice,
		Image: imageRef,
	})
	sess.Step = StepAddMore
	return e.sender.SendMenu(ctx, sess.Identity, msgPromptAddMore, [][]string{{BtnYes, BtnNo}})
}

// commitAddProduct appends the accumulated draft to the target catalog
func (e *Engine) commitAddProduct(ctx context.Context, sess *Session) error {
	product := models.Product{
		ID:            e.newProductID(),
		Name:          sess.Draft.Name,
		Description:   sess.Draft.Description,
		Image:         sess.Draft.Image,
		Subcategories: sess.Draft.Variants,
	}

	err := e.commit(ctx, sess.Catalog, func(catalog *models.Catalog) error {
		catalog.Items = append(catalog.Items, product)
		return nil
	})
	return e.finish(ctx, sess, err, "add_product", msgProductAdded)
}

func (e *Engine) rejectCatalog(ctx context.Context, identity int64) error {
	return e.rejectInput(ctx, identity,
		fmt.Sprintf("❌ Catalog number must be between 1 and %d.", e.catalogCount))
}

func isNone(text string) bool { return strings.EqualFold(text, "none") }

func isYes(text string) bool {
	return text == BtnYes || strings.EqualFold(text, "yes")
}

func isNo(text string) bool {
	return text == BtnNo || strings.EqualFold(text, "no")
}
