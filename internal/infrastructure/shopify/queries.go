package shopify

const variantFields = `
	id
	inventoryQuantity
	selectedOptions { name value }
	inventoryItem { id }`

const productVariantsQuery = `
query ProductVariants($id: ID!) {
  product(id: $id) {
    id
    variants(first: 100) {
      nodes {` + variantFields + `
      }
    }
  }
}`

const locationsQuery = `
query Locations {
  locations(first: 50) {
    nodes { id name }
  }
}`

const productVariantsBulkCreateMutation = `
mutation ProductVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkCreate(productId: $productId, variants: $variants) {
    productVariants {` + variantFields + `
    }
    userErrors { field message }
  }
}`

const productVariantsBulkUpdateMutation = `
mutation ProductVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    productVariants { id }
    userErrors { field message }
  }
}`

const inventoryAdjustQuantitiesMutation = `
mutation InventoryAdjustQuantities($input: InventoryAdjustQuantitiesInput!) {
  inventoryAdjustQuantities(input: $input) {
    inventoryAdjustmentGroup { reason }
    userErrors { field message }
  }
}`
