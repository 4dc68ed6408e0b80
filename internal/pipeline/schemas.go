package pipeline

// Output schemas for each phase, enforced at the generation boundary. Kept as
// string constants next to the artifact types they describe.

const briefSchema = `{
  "type": "object",
  "properties": {
    "single_job": {"type": "string", "minLength": 1},
    "proof_lane": {"type": "string"},
    "stance": {"type": "string"}
  },
  "required": ["single_job", "proof_lane", "stance"],
  "additionalProperties": false
}`

const architectureSchema = `{
  "type": "object",
  "properties": {
    "primary_claim": {"$ref": "#/definitions/claim"},
    "supporting_claims": {"type": "array", "items": {"$ref": "#/definitions/claim"}},
    "objection_handlers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "objection": {"type": "string"},
          "response": {"type": "string"}
        },
        "required": ["objection", "response"],
        "additionalProperties": false
      }
    },
    "proof_points": {"type": "array", "items": {"$ref": "#/definitions/claim"}}
  },
  "required": ["primary_claim", "supporting_claims", "objection_handlers", "proof_points"],
  "additionalProperties": false,
  "definitions": {
    "claim": {
      "type": "object",
      "properties": {
        "text": {"type": "string", "minLength": 1},
        "source": {"type": "string"}
      },
      "required": ["text", "source"],
      "additionalProperties": false
    }
  }
}`

const beatSheetSchema = `{
  "type": "object",
  "properties": {
    "beats": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "max_words": {"type": "integer", "minimum": 1},
          "required_elements": {"type": "array", "items": {"type": "string"}},
          "first_word_types": {"type": "array", "items": {"type": "string"}},
          "must_include_from_inputs": {"type": "array", "items": {"type": "string"}},
          "handoff": {"type": "string"}
        },
        "required": ["name", "max_words", "required_elements", "first_word_types", "must_include_from_inputs", "handoff"],
        "additionalProperties": false
      }
    },
    "campaign_type": {"type": "string"}
  },
  "required": ["beats"],
  "additionalProperties": false
}`

const draftSchema = `{
  "type": "object",
  "properties": {
    "text": {"type": "string", "minLength": 1},
    "notes": {"type": "string"}
  },
  "required": ["text", "notes"],
  "additionalProperties": false
}`

const finalPackageSchema = `{
  "type": "object",
  "properties": {
    "final": {"type": "string", "minLength": 1},
    "extras": {
      "type": "object",
      "properties": {
        "headlines": {"type": "array", "items": {"type": "string"}},
        "subject_lines": {"type": "array", "items": {"type": "string"}},
        "ctas": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["headlines", "subject_lines", "ctas"],
      "additionalProperties": false
    },
    "qa_checklist": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["final", "extras", "qa_checklist"],
  "additionalProperties": false
}`

const variantSchema = `{
  "type": "object",
  "properties": {
    "text": {"type": "string", "minLength": 1}
  },
  "required": ["text"],
  "additionalProperties": false
}`
