package service

import "errors"

// Sentinel errors of the pricing engine. Handlers map them to HTTP statuses;
// callers distinguish them with errors.Is.
var (
	// ErrNoActiveRules: the ruleset has no active price-proposing rule;
	// Simulate refuses to run on guards alone.
	ErrNoActiveRules = errors.New("aucune règle de prix active dans ce jeu de règles")
	// ErrEmptyPopulation: no active product matches the requested scope.
	ErrEmptyPopulation = errors.New("aucun produit actif ne correspond au périmètre demandé")
	// ErrInvalidState: Apply/Rollback invoked on a simulation whose status
	// does not allow the transition. Also returned when a concurrent call won
	// the status race.
	ErrInvalidState = errors.New("statut de la simulation incompatible avec l'opération demandée")
	// ErrNothingApplied: every item failed or was skipped; the transaction
	// was rolled back and the simulation status is unchanged.
	ErrNothingApplied = errors.New("aucun changement de prix n'a pu être appliqué")

	ErrRulesetNotFound    = errors.New("jeu de règles introuvable")
	ErrSimulationNotFound = errors.New("simulation introuvable")
	ErrRuleNotFound       = errors.New("règle introuvable")
	ErrProductNotFound    = errors.New("produit introuvable")

	// ErrInvalidRuleParams wraps the parse error describing which parameter is
	// rejected; use errors.Is to detect it.
	ErrInvalidRuleParams = errors.New("paramètres de règle invalides")
)
