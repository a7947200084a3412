package catalog

// schemaJSON describes a catalog document after YAML decoding.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "objectives"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "objectives": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "description": {"type": "string"},
          "tier": {"type": "string"},
          "prerequisites": {"type": "array", "items": {"type": "string", "minLength": 1}}
        }
      }
    },
    "prompts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "objective", "difficulty", "type"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "objective": {"type": "string", "minLength": 1},
          "difficulty": {"type": "number", "minimum": 0, "maximum": 100},
          "type": {"enum": ["COMPREHENSION", "CLINICAL_REASONING", "APPLICATION", "RECALL"]},
          "text": {"type": "string"}
        }
      }
    }
  }
}`
