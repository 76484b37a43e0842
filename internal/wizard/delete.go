package wizard

import (
	"context"
	"fmt"
	"strconv"

	"catalog-bot/internal/models"

	"go.uber.org/zap"
)

// deleteText drives the Delete-Product and Delete-Variant scripts:
// catalog -> target (chosen from a list rebuilt fresh from the store)
// -> confirm -> removal.
func (e *Engine) deleteText(ctx context.Context, sess *Session, text string) error {
	switch sess.Step {
	case StepDeleteProductCatalog:
		n, ok := e.parseCatalog(text)
		if !ok {
			return e.rejectCatalog(ctx, sess.Identity)
		}
		sess.Catalog = n
		return e.presentProducts(ctx, sess, StepDeleteProductTarget)

	case StepDeleteProductTarget:
		idx, ok := parseChoice(text, len(sess.Choices))
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
		sess.ProductID = sess.Choices[idx-1]
		sess.Step = StepDeleteProductConfirm
		return e.sender.SendMenu(ctx, sess.Identity, "Delete this product?", [][]string{{BtnYes, BtnNo}})

	case StepDeleteProductConfirm:
		switch {
		case isYes(text):
			return e.commitDeleteProduct(ctx, sess)
		case isNo(text):
			e.sessions.Delete(sess.Identity)
			return e.sender.Send(ctx, sess.Identity, msgCancelled)
		default:
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}

	case StepDeleteVariantCatalog:
		n, ok := e.parseCatalog(text)
		if !ok {
			return e.rejectCatalog(ctx, sess.Identity)
		}
		sess.Catalog = n
		return e.presentProducts(ctx, sess, StepDeleteVariantProduct)

	case StepDeleteVariantProduct:
		idx, ok := parseChoice(text, len(sess.Choices))
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
		sess.ProductID = sess.Choices[idx-1]
		return e.presentVariants(ctx, sess)

	case StepDeleteVariantTarget:
		idx, ok := parseChoice(text, sess.VariantCount)
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
		sess.VariantIndex = idx - 1
		sess.Step = StepDeleteVariantConfirm
		return e.sender.SendMenu(ctx, sess.Identity, "Delete this variant?", [][]string{{BtnYes, BtnNo}})

	case StepDeleteVariantConfirm:
		switch {
		case isYes(text):
			return e.commitDeleteVariant(ctx, sess)
		case isNo(text):
			e.sessions.Delete(sess.Identity)
			return e.sender.Send(ctx, sess.Identity, msgCancelled)
		default:
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
	}
	return nil
}

// presentVariants lists the selected product's variants, rebuilt fresh
// from the store at presentation time
func (e *Engine) presentVariants(ctx context.Context, sess *Session) error {
	catalog, _, err := e.catalogs.Load(ctx, sess.Catalog)
	if err != nil {
		e.logger.Error("Catalog load failed",
			zap.Int("catalog", sess.Catalog),
			zap.Error(err))
		return e.sender.Send(ctx, sess.Identity, msgStoreDown)
	}
	product := catalog.FindItem(sess.ProductID)
	if product == nil {
		e.sessions.Delete(sess.Identity)
		return e.sender.Send(ctx, sess.Identity, msgTargetMissing)
	}
	if len(product.Subcategories) == 0 {
		return e.sender.Send(ctx, sess.Identity,
			fmt.Sprintf("%q has no variants.", product.Name))
	}

	rows := make([][]string, len(product.Subcategories))
	for i, variant := range product.Subcategories {
		price := strconv.FormatFloat(variant.Price, 'f', -1, 64)
		rows[i] = []string{fmt.Sprintf("%d. %s — %s", i+1, variant.Type, price)}
	}
	sess.VariantCount = len(product.Subcategories)
	sess.Step = StepDeleteVariantTarget
	return e.sender.SendMenu(ctx, sess.Identity, "Choose a variant:", rows)
}

func (e *Engine) commitDeleteProduct(ctx context.Context, sess *Session) error {
	err := e.commit(ctx, sess.Catalog, func(catalog *models.Catalog) error {
		if !catalog.RemoveItem(sess.ProductID) {
			return errTargetMissing
		}
		return nil
	})
	return e.finish(ctx, sess, err, "delete_product", msgProductDeleted)
}

func (e *Engine) commitDeleteVariant(ctx context.Context, sess *Session) error {
	err := e.commit(ctx, sess.Catalog, func(catalog *models.Catalog) error {
		product := catalog.FindItem(sess.ProductID)
		if product == nil {
			return errTargetMissing
		}
		// The index was chosen from a fresh listing, but the product
		// may have changed since; bounds are re-checked at commit time.
		if sess.VariantIndex < 0 || sess.VariantIndex >= len(product.Subcategories) {
			return errTargetMissing
		}
		product.Subcategories = append(
			product.Subcategories[:sess.VariantIndex],
			product.Subcategories[sess.VariantIndex+1:]...)
		return nil
	})
	if err == errTargetMissing {
		e.sessions.Delete(sess.Identity)
		return e.sender.Send(ctx, sess.Identity, msgVariantMissing)
	}
	return e.finish(ctx, sess, err, "delete_variant", msgVariantDeleted)
}
