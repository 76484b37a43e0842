package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"catalog-bot/internal/models"

	"go.uber.org/zap"
)

// editText drives the Edit-Product script: catalog -> product ->
// field -> new value -> commit. The product choice is resolved to a
// stable id the moment it is made; the id, never the display name, is
// carried through the rest of the script.
func (e *Engine) editText(ctx context.Context, sess *Session, text string) error {
	switch sess.Step {
	case StepEditCatalog:
		n, ok := e.parseCatalog(text)
		if !ok {
			return e.rejectCatalog(ctx, sess.Identity)
		}
		sess.Catalog = n
		return e.presentProducts(ctx, sess, StepEditProduct)

	case StepEditProduct:
		idx, ok := parseChoice(text, len(sess.Choices))
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
		sess.ProductID = sess.Choices[idx-1]
		sess.Step = StepEditField
		return e.sender.SendMenu(ctx, sess.Identity, msgPromptField, [][]string{
			{BtnFieldName, BtnFieldDescription},
			{BtnFieldPhoto, BtnFieldVariant},
		})

	case StepEditField:
		switch strings.ToLower(text) {
		case "name":
			sess.Step = StepEditName
			return e.sender.Send(ctx, sess.Identity, msgPromptNewName)
		case "description":
			sess.Step = StepEditDescription
			return e.sender.Send(ctx, sess.Identity, msgPromptNewDesc)
		case "photo":
			sess.Step = StepEditPhoto
			return e.sender.Send(ctx, sess.Identity, msgPromptNewPhoto)
		case "variant":
			sess.Draft = &ProductDraft{}
			sess.Step = StepEditVariantType
			return e.sender.Send(ctx, sess.Identity, msgPromptVarType)
		default:
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}

	case StepEditName:
		return e.commitEditField(ctx, sess, func(p *models.Product) { p.Name = text })

	case StepEditDescription:
		return e.commitEditField(ctx, sess, func(p *models.Product) { p.Description = text })

	case StepEditPhoto:
		if !isNone(text) {
			return e.rejectInput(ctx, sess.Identity, msgBadPhotoStep)
		}
		return e.commitEditPhoto(ctx, sess, "")

	case StepEditVariantType:
		sess.Draft.VarType = text
		sess.Step = StepEditVariantPrice
		return e.sender.Send(ctx, sess.Identity, msgPromptVarPrice)

	case StepEditVariantPrice:
		price, ok := parsePrice(text)
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgBadPrice)
		}
		sess.Draft.VarPrice = price
		sess.Step = StepEditVariantPhoto
		return e.sender.Send(ctx, sess.Identity, msgPromptVarPhoto)

	case StepEditVariantPhoto:
		if !isNone(text) {
			return e.rejectInput(ctx, sess.Identity, msgBadPhotoStep)
		}
		return e.commitEditVariant(ctx, sess, "")
	}
	return nil
}

func (e *Engine) commitEditField(ctx context.Context, sess *Session, apply func(*models.Product)) error {
	err := e.commit(ctx, sess.Catalog, func(catalog *models.Catalog) error {
		product := catalog.FindItem(sess.ProductID)
		if product == nil {
			return errTargetMissing
		}
		apply(product)
		return nil
	})
	return e.finish(ctx, sess, err, "edit_product", msgProductUpdated)
}

func (e *Engine) commitEditPhoto(ctx context.Context, sess *Session, imageRef string) error {
	return e.commitEditField(ctx, sess, func(p *models.Product) { p.Image = imageRef })
}

// commitEditVariant appends a freshly entered variant to the selected
// product
func (e *Engine) commitEditVariant(ctx context.Context, sess *Session, imageRef string) error {
	variant := models.Variant{
		Type:  sess.Draft.VarType,
		Price: sess.Draft.VarPrice,
		Image: imageRef,
	}
	err := e.commit(ctx, sess.Catalog, func(catalog *models.Catalog) error {
		product := catalog.FindItem(sess.ProductID)
		if product == nil {
			return errTargetMissing
		}
		product.Subcategories = append(product.Subcategories, variant)
		return nil
	})
	return e.finish(ctx, sess, err, "edit_product", msgProductUpdated)
}

// presentProducts shows a numbered product list built fresh from the
// store, so the choice reflects current rather than stale contents,
// and records the id mapping in the session
func (e *Engine) presentProducts(ctx context.Context, sess *Session, next Step) error {
	catalog, _, err := e.catalogs.Load(ctx, sess.Catalog)
	if err != nil {
		e.logger.Error("Catalog load failed",
			zap.Int("catalog", sess.Catalog),
			zap.Error(err))
		return e.sender.Send(ctx, sess.Identity, msgStoreDown)
	}
	if len(catalog.Items) == 0 {
		return e.sender.Send(ctx, sess.Identity,
			fmt.Sprintf("Catalog %d has no products.", sess.Catalog))
	}

	sess.Choices = make([]string, len(catalog.Items))
	rows := make([][]string, len(catalog.Items))
	for i, item := range catalog.Items {
		sess.Choices[i] = item.ID
		rows[i] = []string{fmt.Sprintf("%d. %s", i+1, item.Name)}
	}
	sess.Step = next
	return e.sender.SendMenu(ctx, sess.Identity, "Choose a product:", rows)
}

// parseChoice resolves a numbered-list selection, accepting either the
// bare number or the full "N. label" button text
func parseChoice(text string, n int) (int, bool) {
	head := text
	if dot := strings.IndexByte(text, '.'); dot >= 0 {
		head = text[:dot]
	}
	idx, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx, true
}
