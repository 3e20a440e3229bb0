package model

// Category represents a row in the `Categories` table.
type Category struct {
    ID   int64  // Categories.category_id
    Name string // Categories.category_name, e.g. "Electronics"
}

// CategoryAssignment links a product to a category
// (`CategoryAssignments`).  A product may belong to several categories.
type CategoryAssignment struct {
    ProductID  string
    CategoryID int64
}
