package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dgrijalva/jwt-go"

	"catalog/internal/catalog"
	"catalog/internal/models"
)

// newListing starts a listing for the viewer the server will resolve for
// token: admin only when the token says so and the user view was not
// requested. The token is only read here; the server verifies it.
func newListing(token string, userView bool) catalog.ListingState {
	viewer := models.ViewerUser
	if !userView && tokenIsAdmin(token) {
		viewer = models.ViewerAdmin
	}
	return catalog.NewListingState(viewer)
}

func tokenIsAdmin(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return isAdmin
}

// renderListing prints one row per visible product. Admin controls are
// only printed for the admin viewer.
func renderListing(out io.Writer, state catalog.ListingState) error {
	visible := state.Visible()
	if len(visible) == 0 {
		_, err := fmt.Fprintln(out, "No products found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tBRAND\tPRICE\tSTOCK\tSTATUS\t")
	for _, p := range visible {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%s\t%s\n",
			p.ID, p.Title, p.Brand, p.Price, p.StockQuantity, status(p), controls(state.Viewer, p))
	}
	return w.Flush()
}

func status(p models.Product) string {
	switch {
	case p.IsDeleted():
		return "deleted"
	case p.StockQuantity <= 0:
		return "out of stock"
	default:
		return "available"
	}
}

func controls(viewer models.Viewer, p models.Product) string {
	if viewer != models.ViewerAdmin {
		return ""
	}
	if p.IsDeleted() {
		return "[edit] [undelete]"
	}
	return "[edit] [delete]"
}

func renderSummary(out io.Writer, s catalog.Summary) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "total\t%d\n", s.Total)
	fmt.Fprintf(w, "available\t%d\n", s.Available)
	fmt.Fprintf(w, "out of stock\t%d\n", s.OutOfStock)
	fmt.Fprintf(w, "deleted\t%d\n", s.Deleted)
	w.Flush()
}
