// Package tools holds the deterministic helpers behind the analysis
// stages: the TRIZ principle catalogue, the novelty heuristic, the
// feasibility scorer, and the duration estimator. Everything here is a
// pure function over already-structured data; no model calls.
package tools

// TRIZPrinciples is the fixed catalogue of the 40 inventive principles.
// The hypothesis generator offers the first few to the model as
// suggestions and falls back to the first one when recovery fails.
var TRIZPrinciples = []string{
	"Segmentation", "Taking out", "Local quality", "Asymmetry",
	"Merging", "Universality", "Nested doll", "Anti-weight",
	"Preliminary anti-action", "Preliminary action", "Beforehand cushioning",
	"Equipotentiality", "The other way round", "Spheroidality",
	"Dynamics", "Partial or excessive actions", "Another dimension",
	"Mechanical vibration", "Periodic action", "Continuity of useful action",
	"Skipping", "Blessing in disguise", "Feedback", "Intermediary",
	"Self-service", "Copying", "Cheap short-living objects", "Mechanics substitution",
	"Pneumatics and hydraulics", "Flexible shells and thin films",
	"Porous materials", "Color changes", "Homogeneity", "Discarding and recovering",
	"Parameter changes", "Phase transitions", "Thermal expansion",
	"Strong oxidants", "Inert atmosphere", "Composite materials",
}
